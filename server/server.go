// Package server exposes a Weaver over HTTP. Clients post event streams and
// then look up the resulting timeline.
package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"golang.org/x/crypto/sha3"

	"github.com/sarchlab/eventweave/eventio"
	"github.com/sarchlab/eventweave/idgen"
	"github.com/sarchlab/eventweave/occupancy"
	"github.com/sarchlab/eventweave/weave"
)

// Server keeps the most recent timeline and answers queries about it.
type Server[T any] struct {
	weaver      *weave.Weaver[T]
	codec       eventio.Codec[T]
	reader      *eventio.Reader[T]
	writer      *eventio.Writer[T]
	portNumber  int
	openBrowser bool

	lock     sync.RWMutex
	timeline *weave.Timeline[T]
}

// Builder can build Servers.
type Builder[T any] struct {
	codec       eventio.Codec[T]
	weaver      *weave.Weaver[T]
	portNumber  int
	openBrowser bool
}

// MakeBuilder creates a Builder that picks a random port.
func MakeBuilder[T any]() Builder[T] {
	return Builder[T]{}
}

// WithCodec sets how bound values are parsed and printed.
func (b Builder[T]) WithCodec(c eventio.Codec[T]) Builder[T] {
	b.codec = c
	return b
}

// WithWeaver sets the Weaver to use. By default, a Weaver ordered by the
// codec is created.
func (b Builder[T]) WithWeaver(w *weave.Weaver[T]) Builder[T] {
	b.weaver = w
	return b
}

// WithPortNumber sets the port number of the server. Ports below 1000 are not
// allowed and fall back to a random port.
func (b Builder[T]) WithPortNumber(portNumber int) Builder[T] {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)

		portNumber = 0
	}

	b.portNumber = portNumber

	return b
}

// WithBrowser sets whether the timeline is opened in a browser once the
// server listens.
func (b Builder[T]) WithBrowser(open bool) Builder[T] {
	b.openBrowser = open
	return b
}

// Build creates the Server.
func (b Builder[T]) Build() *Server[T] {
	if b.codec.Parse == nil {
		panic("server: a codec is required")
	}

	if b.weaver == nil {
		b.weaver = weave.MakeBuilder[T]().
			WithCompare(b.codec.Compare).
			Build()
	}

	return &Server[T]{
		weaver: b.weaver,
		codec:  b.codec,
		reader: eventio.MakeReaderBuilder[T]().
			WithCodec(b.codec).
			WithIDGenerator(idgen.NewGlobal()).
			Build(),
		writer:      eventio.NewWriter(b.codec),
		portNumber:  b.portNumber,
		openBrowser: b.openBrowser,
		timeline:    weave.NewTimeline[T](b.codec.Compare, nil),
	}
}

// SetTimeline replaces the timeline that is served.
func (s *Server[T]) SetTimeline(t *weave.Timeline[T]) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.timeline = t
}

// Timeline returns the timeline that is served.
func (s *Server[T]) Timeline() *weave.Timeline[T] {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.timeline
}

// Router returns the handler of all the API endpoints.
func (s *Server[T]) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/weave", s.weave).Methods(http.MethodPost)
	r.HandleFunc("/api/timeline", s.listTimeline).Methods(http.MethodGet)
	r.HandleFunc("/api/at/{x}", s.at).Methods(http.MethodGet)
	r.HandleFunc("/api/segment/{index:[0-9]+}", s.segment).
		Methods(http.MethodGet)
	r.HandleFunc("/api/occupancy", s.occupancy).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", s.listResources)
	r.HandleFunc("/api/profile", s.collectProfile)

	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server[T]) ListenAndServe(ctx context.Context) error {
	actualPort := ":0"
	if s.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", actualPort, err)
	}

	url := fmt.Sprintf("http://localhost:%d/api/timeline?format=table",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Serving timeline at %s\n", url)

	if s.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			log.Warn("Could not open browser", "url", url, "err", err)
		}
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			log.Error("Server shutdown failed", "err", err)
		}
	}()

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

type errorRsp struct {
	Error string `json:"error"`
}

type atRsp struct {
	Index   int                   `json:"index"`
	Segment eventio.SegmentRecord `json:"segment"`
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

type combinationRsp struct {
	Active    []string `json:"active"`
	Total     float64  `json:"total"`
	Intervals int      `json:"intervals"`
	Instants  int      `json:"instants"`
	Unbounded bool     `json:"unbounded"`
}

type occupancyRsp struct {
	Combinations []combinationRsp `json:"combinations"`
	BusyTime     float64          `json:"busy_time"`
	IdleTime     float64          `json:"idle_time"`
}

func (s *Server[T]) weave(w http.ResponseWriter, r *http.Request) {
	streams, err := s.reader.ReadJSONStreams(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	timeline, err := s.weaver.Timeline(streams...)
	if errors.Is(err, weave.ErrInvalidEvent) {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	s.SetTimeline(timeline)

	log.Info("Timeline replaced",
		"streams", len(streams), "segments", timeline.Len())

	s.respondTimeline(w, r, eventio.FormatJSON, timeline)
}

func (s *Server[T]) listTimeline(w http.ResponseWriter, r *http.Request) {
	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = string(eventio.FormatJSON)
	}

	format, err := eventio.ParseFormat(formatName)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	s.respondTimeline(w, r, format, s.Timeline())
}

func (s *Server[T]) respondTimeline(
	w http.ResponseWriter,
	r *http.Request,
	format eventio.Format,
	timeline *weave.Timeline[T],
) {
	buf := bytes.NewBuffer(nil)

	err := s.writer.Write(buf, format, timeline.Segments())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	etag := digest(buf.Bytes())
	w.Header().Set("ETag", etag)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType(format))

	_, err = w.Write(buf.Bytes())
	if err != nil {
		log.Error("Failed to write response", "err", err)
	}
}

func (s *Server[T]) at(w http.ResponseWriter, r *http.Request) {
	text := mux.Vars(r)["x"]

	x, err := s.codec.Parse(text)
	if err != nil {
		respondError(w, http.StatusBadRequest,
			fmt.Errorf("cannot parse %q as %s: %w", text, s.codec.Name, err))
		return
	}

	segment, index, ok := s.Timeline().At(x)
	if !ok {
		respondError(w, http.StatusNotFound,
			fmt.Errorf("no segment contains %s", text))
		return
	}

	respondJSON(w, http.StatusOK, atRsp{
		Index:   index,
		Segment: eventio.Record(s.codec, segment),
	})
}

func (s *Server[T]) segment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	segments := s.Timeline().Segments()
	if index >= len(segments) {
		respondError(w, http.StatusNotFound,
			fmt.Errorf("segment %d does not exist", index))
		return
	}

	record := eventio.Record(s.codec, segments[index])

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&record)
	serializer.SetMaxDepth(2)

	w.Header().Set("Content-Type", "application/json")

	err = serializer.Serialize(w)
	if err != nil {
		log.Error("Failed to serialize segment", "index", index, "err", err)
	}
}

func (s *Server[T]) occupancy(w http.ResponseWriter, _ *http.Request) {
	if s.codec.Width == nil {
		respondError(w, http.StatusNotImplemented,
			fmt.Errorf("%s values have no width", s.codec.Name))
		return
	}

	report := occupancy.Analyze(s.Timeline().Segments(), s.codec.Width)

	rsp := occupancyRsp{
		Combinations: make([]combinationRsp, 0, len(report.Combinations)),
		BusyTime:     report.BusyTime,
		IdleTime:     report.IdleTime,
	}

	for _, c := range report.Combinations {
		active := make([]string, 0, c.Active.Len())
		for id := range c.Active.All() {
			active = append(active, string(id))
		}

		rsp.Combinations = append(rsp.Combinations, combinationRsp{
			Active:    active,
			Total:     c.Total,
			Intervals: c.Intervals,
			Instants:  c.Instants,
			Unbounded: c.Unbounded,
		})
	}

	respondJSON(w, http.StatusOK, rsp)
}

func (s *Server[T]) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()

	process, err := process.NewProcess(int32(pid))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := process.CPUPercent()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	memorySize, err := process.MemoryInfo()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (s *Server[T]) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		respondError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, prof)
}

// digest is a strong ETag of the response body.
func digest(body []byte) string {
	sum := sha3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func contentType(format eventio.Format) string {
	switch format {
	case eventio.FormatCSV:
		return "text/csv"
	case eventio.FormatTable:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to encode response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(bytes)
	if err != nil {
		log.Error("Failed to write response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	log.Debug("Request failed", "status", status, "err", err)
	respondJSON(w, status, errorRsp{Error: err.Error()})
}
