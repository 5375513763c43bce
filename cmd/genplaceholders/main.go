package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/nightwood/internal/placeholders"
)

func main() {
	dir := flag.String("dir", "assets/textures", "directory to write icons into")
	overwrite := flag.Bool("overwrite", false, "replace existing icons")
	flag.Parse()

	fmt.Println("Nightwood Placeholder Icon Generator")
	fmt.Println("====================================")
	fmt.Println()

	written, err := placeholders.WriteAll(*dir, *overwrite)
	for _, path := range written {
		fmt.Printf("  wrote %s\n", path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	if len(written) == 0 {
		fmt.Println("Nothing to do; all icons exist (use -overwrite to regenerate).")
		return
	}
	fmt.Println("Done! Missing icons are drawn as placeholders at runtime too.")
}
