package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/eventweave/cli"
	"github.com/sarchlab/eventweave/weave"
)

var _ = Describe("eventweave", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		return path
	}

	run := func(args ...string) error {
		cmd := cli.NewRootCommand()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--env-file", filepath.Join(dir, ".env")))

		return cmd.Execute()
	}

	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = bytes.NewBuffer(nil)
	})

	It("should print the version", func() {
		Expect(run("version")).To(Succeed())
		Expect(out.String()).To(Equal("eventweave " + cli.Version + "\n"))
	})

	Context("weave", func() {
		var first, second string

		BeforeEach(func() {
			first = writeFile("a.csv", "id,begin,end\nA,1,5\n")
			second = writeFile("b.json", `[{"id": "B", "begin": 3, "end": 8}]`)
		})

		It("should print a table", func() {
			Expect(run("weave", first, second)).To(Succeed())

			Expect(out.String()).To(ContainSubstring("SEGMENT"))
			Expect(out.String()).To(MatchRegexp(`\[1, 3\)\s+interval\s+\{A\}`))
			Expect(out.String()).To(MatchRegexp(`\[3, 5\]\s+interval\s+\{A, B\}`))
			Expect(out.String()).To(MatchRegexp(`\(5, 8\]\s+interval\s+\{B\}`))
		})

		It("should print CSV", func() {
			Expect(run("weave", "--format", "csv", first, second)).To(Succeed())

			Expect(out.String()).To(Equal(
				"kind,lower,lower_closed,upper,upper_closed,active\n" +
					"interval,1,true,3,false,A\n" +
					"interval,3,true,5,true,A;B\n" +
					"interval,5,false,8,true,B\n"))
		})

		It("should take flags from the environment", func() {
			setenv("EVENTWEAVE_FORMAT", "json")

			Expect(run("weave", first, second)).To(Succeed())

			var records []map[string]any
			Expect(json.Unmarshal(out.Bytes(), &records)).To(Succeed())
			Expect(records).To(HaveLen(3))
		})

		It("should prefer command line flags over the environment", func() {
			setenv("EVENTWEAVE_FORMAT", "json")

			Expect(run("weave", "--format", "csv", first, second)).To(Succeed())
			Expect(out.String()).To(HavePrefix("kind,"))
		})

		It("should take flags from an env file", func() {
			writeFile(".env", "EVENTWEAVE_COMBINATIONS=true\n")
			DeferCleanup(os.Unsetenv, "EVENTWEAVE_COMBINATIONS")

			Expect(run("weave", first, second)).To(Succeed())
			Expect(out.String()).To(Equal("{A}\n{A, B}\n{B}\n"))
		})

		It("should write to a file", func() {
			target := filepath.Join(dir, "timeline.csv")

			Expect(run("weave", "--format", "csv", "-o", target,
				first, second)).To(Succeed())

			content, err := os.ReadFile(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("A;B"))
			Expect(out.Len()).To(Equal(0))
		})

		It("should print a summary", func() {
			Expect(run("weave", "--summary", first, second)).To(Succeed())

			Expect(out.String()).To(ContainSubstring("Busy: 7  Idle: 0"))
			Expect(out.String()).To(ContainSubstring("Longest: {B} (3)"))
		})

		It("should refuse to summarize strings", func() {
			Expect(run("weave", "--type", "string", "--summary",
				first, second)).NotTo(Succeed())
		})

		It("should reject invalid events", func() {
			bad := writeFile("bad.yaml", "- id: X\n  begin: 2\n  end: 1\n")

			err := run("weave", first, bad)

			Expect(err).To(MatchError(weave.ErrInvalidEvent))
		})

		It("should reject unknown value types", func() {
			Expect(run("weave", "--type", "color", first)).
				To(MatchError(ContainSubstring("unknown value type")))
		})

		It("should reject unknown formats", func() {
			Expect(run("weave", "--format", "xml", first)).NotTo(Succeed())
		})

		It("should weave times", func() {
			meetings := writeFile("m.yaml",
				"- id: standup\n"+
					"  begin: 2024-01-01T09:00:00Z\n"+
					"  end: 2024-01-01T09:15:00Z\n")
			focus := writeFile("f.csv",
				"id,begin,end\nfocus,2024-01-01T09:15:00Z,\n")

			Expect(run("weave", "--type", "time", "--format", "csv",
				meetings, focus)).To(Succeed())
			Expect(out.String()).To(ContainSubstring(
				"point,2024-01-01T09:15:00Z,true,2024-01-01T09:15:00Z,true,focus;standup"))
			Expect(out.String()).To(ContainSubstring(
				"interval,2024-01-01T09:15:00Z,false,,false,focus"))
		})

		It("should record into a database and print it back", func() {
			db := filepath.Join(dir, "run")

			Expect(run("weave", "--db", db, first, second)).To(Succeed())
			Expect(db + ".sqlite3").To(BeAnExistingFile())

			out.Reset()
			Expect(run("history", db+".sqlite3")).To(Succeed())

			Expect(out.String()).To(ContainSubstring("Events: 2"))
			Expect(out.String()).To(ContainSubstring("3 of 3 segments"))
			Expect(out.String()).To(MatchRegexp(`1\s+\[3, 5\]\s+interval\s+\{A, B\}`))

			out.Reset()
			Expect(run("history", "--active", "B", "--limit", "1",
				db+".sqlite3")).To(Succeed())

			Expect(out.String()).To(ContainSubstring("1 of 2 segments"))
			Expect(out.String()).NotTo(ContainSubstring("[1, 3)"))
		})

		It("should match whole event IDs in history", func() {
			db := filepath.Join(dir, "ids")
			ids := writeFile("ids.csv", "id,begin,end\nex1,0,5\ne_1x,10,20\n")

			Expect(run("weave", "--db", db, ids)).To(Succeed())

			for _, id := range []string{"e_1", "e%"} {
				out.Reset()
				Expect(run("history", "--active", id, db+".sqlite3")).
					To(Succeed())
				Expect(out.String()).To(ContainSubstring("0 of 0 segments"))
			}

			out.Reset()
			Expect(run("history", "--active", "e_1x", db+".sqlite3")).
				To(Succeed())
			Expect(out.String()).To(ContainSubstring("1 of 1 segments"))
			Expect(out.String()).To(MatchRegexp(`2\s+\[10, 20\]\s+interval\s+\{e_1x\}`))
		})

		It("should leave no output behind for invalid events", func() {
			bad := writeFile("bad.csv", "id,begin,end\nX,2,1\n")
			target := filepath.Join(dir, "timeline.csv")
			db := filepath.Join(dir, "bad")

			err := run("weave", "-o", target, "--db", db, first, bad)

			Expect(err).To(MatchError(weave.ErrInvalidEvent))
			Expect(target).NotTo(BeAnExistingFile())
			Expect(db + ".sqlite3").NotTo(BeAnExistingFile())
		})

		It("should not overwrite a database", func() {
			db := filepath.Join(dir, "run")
			writeFile("run.sqlite3", "")

			Expect(run("weave", "--db", db, first)).
				To(MatchError(ContainSubstring("already exists")))
		})
	})

	It("should report a missing history database", func() {
		Expect(run("history", filepath.Join(dir, "none.sqlite3"))).
			NotTo(Succeed())
	})
})
