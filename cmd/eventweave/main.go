// Command eventweave merges event streams into a timeline of non-overlapping
// segments.
package main

import "github.com/sarchlab/eventweave/cli"

func main() {
	cli.Execute()
}
