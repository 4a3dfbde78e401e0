package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jwebster45206/npc-engine/internal/seed"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.hcl>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	if err := validateFile(filename, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Seed file is valid!")
}

// validateFile builds the seed and checks the dialogue graph. Dangling edges
// and unindexed pages fail validation; unreachable pages are only reported.
func validateFile(filename string, out io.Writer) error {
	fmt.Fprintf(out, "Validating %s...\n", filename)

	s, err := seed.LoadFile(filename)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d maps, %d regions, %d items, %d NPCs, %d pages\n",
		len(s.World.Partitions()), len(s.World.Regions()), len(s.Catalog.Items()),
		len(s.Store.NPCs()), len(s.Store.Pages()))

	report := s.Store.Validate()
	for _, id := range report.Unreachable {
		fmt.Fprintf(out, "warning: page %d is not reachable from any NPC entry\n", id)
	}

	var problems int
	for _, d := range report.Dangling {
		fmt.Fprintf(out, "error: %s edge of %d points at missing page %d\n", d.Edge.Kind, d.Edge.Owner, d.Target)
		problems++
	}
	for _, id := range report.Unindexed {
		fmt.Fprintf(out, "error: page %d is missing from the page index\n", id)
		problems++
	}
	if problems > 0 {
		return fmt.Errorf("%d problems in %s", problems, filename)
	}
	return nil
}
