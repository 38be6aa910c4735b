// Command imgrename normalizes card image file names in a directory:
// dots and spaces in the name become underscores, the extension is kept.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pefman/cr-calc/internal/engine"
)

type summary struct {
	Renamed   int
	Unchanged int
	Skipped   int // target already exists
	Errors    int
}

var rename = os.Rename

func renameAll(dir string) (summary, error) {
	var sum summary
	entries, err := os.ReadDir(dir)
	if err != nil {
		return sum, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !engine.IsPNG(e.Name()) {
			continue
		}
		target := engine.NormalizeImageName(e.Name())
		if target == e.Name() {
			sum.Unchanged++
			continue
		}
		to := filepath.Join(dir, target)
		if _, err := os.Stat(to); err == nil {
			log.Printf("imgrename: skip %s, %s exists", e.Name(), target)
			sum.Skipped++
			continue
		}
		if err := rename(filepath.Join(dir, e.Name()), to); err != nil {
			log.Printf("imgrename: rename %s: %v", e.Name(), err)
			sum.Errors++
			continue
		}
		fmt.Printf("%s -> %s\n", e.Name(), target)
		sum.Renamed++
	}
	return sum, nil
}

func main() {
	dir := flag.String("dir", "public/resized_cards", "directory holding card images")
	flag.Parse()

	sum, err := renameAll(*dir)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("renamed %d, unchanged %d, skipped %d, errors %d\n", sum.Renamed, sum.Unchanged, sum.Skipped, sum.Errors)
	if sum.Errors > 0 {
		os.Exit(1)
	}
}
