package eventio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/eventweave/weave"
)

func describe[T any](codec Codec[T], events []weave.Event[T]) []string {
	out := make([]string, len(events))

	for i, e := range events {
		begin, end := "-inf", "+inf"
		if v, ok := e.Begin.Value(); ok {
			begin = codec.Format(v)
		}

		if v, ok := e.End.Value(); ok {
			end = codec.Format(v)
		}

		out[i] = string(e.ID) + " " + begin + " " + end
	}

	return out
}

var _ = Describe("Reader", func() {
	var (
		mockCtrl *gomock.Controller
		ids      *MockGenerator
		reader   *Reader[int64]
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		ids = NewMockGenerator(mockCtrl)
		reader = MakeReaderBuilder[int64]().
			WithCodec(IntCodec()).
			WithIDGenerator(ids).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should read CSV with unbounded cells", func() {
		in := "id,begin,end\nA,1,5\nB,,3\nC,4,-\nD, - ,\n"

		events, err := reader.ReadCSV(strings.NewReader(in))

		Expect(err).NotTo(HaveOccurred())
		Expect(describe(IntCodec(), events)).To(Equal([]string{
			"A 1 5",
			"B -inf 3",
			"C 4 +inf",
			"D -inf +inf",
		}))
	})

	It("should name CSV events without an id column", func() {
		ids.EXPECT().Generate().Return(weave.EventID("g1"))
		ids.EXPECT().Generate().Return(weave.EventID("g2"))

		events, err := reader.ReadCSV(strings.NewReader("end,begin,note\n2,1,x\n7,7,y\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(describe(IntCodec(), events)).To(Equal([]string{
			"g1 1 2",
			"g2 7 7",
		}))
	})

	It("should report the line of a bad CSV value", func() {
		_, err := reader.ReadCSV(strings.NewReader("id,begin,end\nA,1,2\nB,x,3\n"))

		Expect(err).To(MatchError(ContainSubstring("line 3")))
	})

	It("should require begin and end columns", func() {
		_, err := reader.ReadCSV(strings.NewReader("id,start\nA,1\n"))

		Expect(err).To(HaveOccurred())
	})

	It("should read JSON with numbers, strings and nulls", func() {
		in := `[{"id":"A","begin":1,"end":"5"},{"id":"B","begin":null,"end":3},{"id":"C","begin":4}]`

		events, err := reader.ReadJSON(strings.NewReader(in))

		Expect(err).NotTo(HaveOccurred())
		Expect(describe(IntCodec(), events)).To(Equal([]string{
			"A 1 5",
			"B -inf 3",
			"C 4 +inf",
		}))
	})

	It("should read JSON streams", func() {
		in := `{"streams":[[{"id":"A","begin":1,"end":2}],[{"id":"B","begin":2,"end":3}]]}`

		streams, err := reader.ReadJSONStreams(strings.NewReader(in))

		Expect(err).NotTo(HaveOccurred())
		Expect(streams).To(HaveLen(2))
		Expect(describe(IntCodec(), streams[1])).To(Equal([]string{"B 2 3"}))
	})

	It("should read YAML", func() {
		in := "- id: A\n  begin: 1\n  end: 5\n- id: B\n  end: 3\n- id: C\n  begin: 4\n  end: ~\n"

		events, err := reader.ReadYAML(strings.NewReader(in))

		Expect(err).NotTo(HaveOccurred())
		Expect(describe(IntCodec(), events)).To(Equal([]string{
			"A 1 5",
			"B -inf 3",
			"C 4 +inf",
		}))
	})

	It("should read files by extension", func() {
		dir := GinkgoT().TempDir()
		csvPath := filepath.Join(dir, "a.csv")
		yamlPath := filepath.Join(dir, "b.yml")

		Expect(os.WriteFile(csvPath, []byte("id,begin,end\nA,1,3\n"), 0o644)).To(Succeed())
		Expect(os.WriteFile(yamlPath, []byte("- {id: B, begin: 3, end: 6}\n"), 0o644)).To(Succeed())

		streams, err := reader.ReadFiles(csvPath, yamlPath)

		Expect(err).NotTo(HaveOccurred())
		Expect(streams).To(HaveLen(2))
		Expect(describe(IntCodec(), streams[0])).To(Equal([]string{"A 1 3"}))
		Expect(describe(IntCodec(), streams[1])).To(Equal([]string{"B 3 6"}))
	})

	It("should reject unknown extensions", func() {
		path := filepath.Join(GinkgoT().TempDir(), "events.txt")
		Expect(os.WriteFile(path, nil, 0o644)).To(Succeed())

		_, err := reader.ReadFile(path)

		Expect(errors.Is(err, ErrUnknownFormat)).To(BeTrue())
	})
})

var _ = Describe("Codecs", func() {
	It("should parse and order timestamps", func() {
		c := TimeCodec()

		a, err := c.Parse("2024-01-01T00:00:00Z")
		Expect(err).NotTo(HaveOccurred())

		b, err := c.Parse("2024-01-01T01:00:00+01:00")
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Compare(a, b)).To(Equal(0))
		Expect(c.Width(a, a.Add(90*time.Second))).To(Equal(90.0))
	})

	It("should refuse NaN", func() {
		_, err := FloatCodec().Parse("NaN")
		Expect(err).To(HaveOccurred())
	})

	It("should measure the full int range without overflow", func() {
		w := IntCodec().Width(math.MinInt64, math.MaxInt64)

		Expect(w).To(BeNumerically("~", math.Exp2(64), 1e4))
	})

	It("should have no width for strings", func() {
		Expect(StringCodec().Width).To(BeNil())
	})
})
