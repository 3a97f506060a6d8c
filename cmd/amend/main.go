package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/juliankroeber/go-amend/pkg/amend"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Println("go-amend version " + version)
	case "replace":
		err = runReplace(os.Args[2:])
	case "gc":
		err = runGC(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "amend: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("go-amend - In-place editing of DOCX files")
	fmt.Println()
	fmt.Println("Usage: amend <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  replace [-fixed] [-ignore-case] [-everywhere] <in.docx> <out.docx> <pattern> <replacement>")
	fmt.Println("        Replace every match of pattern in the document body")
	fmt.Println("  gc <in.docx> <out.docx>")
	fmt.Println("        Remove media files nothing references anymore")
	fmt.Println("  inspect [-blocks] <in.docx>")
	fmt.Println("        Print the document's parts, bookmarks and text")
	fmt.Println("  version")
	fmt.Println("        Show version information")
}

func runReplace(args []string) error {
	fs := flag.NewFlagSet("replace", flag.ExitOnError)
	fixed := fs.Bool("fixed", false, "treat the pattern as a literal string")
	ignoreCase := fs.Bool("ignore-case", false, "match without regard to letter case")
	everywhere := fs.Bool("everywhere", false, "also sweep headers and footers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 4 {
		return fmt.Errorf("replace needs <in.docx> <out.docx> <pattern> <replacement>")
	}
	in, out := fs.Arg(0), fs.Arg(1)
	pattern, replacement := fs.Arg(2), fs.Arg(3)

	doc, err := amend.OpenFile(in)
	if err != nil {
		return err
	}

	opts := amend.ReplaceOptions{Fixed: *fixed, IgnoreCase: *ignoreCase, Warn: true}
	var n int
	if *everywhere {
		n, err = doc.ReplaceAllTextEverywhere(pattern, replacement, opts)
	} else {
		n, err = doc.ReplaceAllText(pattern, replacement, opts)
	}
	if err != nil {
		return err
	}
	if err := doc.SaveFile(out); err != nil {
		return err
	}
	fmt.Printf("Replaced %d occurrence(s), wrote %s\n", n, out)
	return nil
}

func runGC(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("gc needs <in.docx> <out.docx>")
	}
	doc, err := amend.OpenFile(args[0])
	if err != nil {
		return err
	}
	removed, err := doc.ReclaimUnusedMedia()
	if err != nil {
		return err
	}
	if err := doc.SaveFile(args[1]); err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Println("No unused media found")
	} else {
		fmt.Printf("Removed %d unused media file(s):\n", len(removed))
		for _, name := range removed {
			fmt.Println("  " + name)
		}
	}
	fmt.Println("Wrote " + args[1])
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	blocks := fs.Bool("blocks", false, "dump every block's runs and markers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect needs <in.docx>")
	}

	doc, err := amend.OpenFile(fs.Arg(0))
	if err != nil {
		return err
	}

	cursor := doc.Cursor()
	for _, part := range doc.Parts() {
		fmt.Printf("%s (%s)\n", part.Name, part.Kind)
		if *blocks {
			if err := cursor.SelectPart(part); err != nil {
				return err
			}
			cursor.Begin()
			for cursor.OnBlock() {
				chunk, err := cursor.InspectChunk()
				if err != nil {
					return err
				}
				fmt.Print(indent(chunk, "  "))
				if err := cursor.Forward(); err != nil {
					return err
				}
			}
		} else if text := part.Text(); text != "" {
			fmt.Print(indent(text, "  "))
		}
	}

	if names := doc.Bookmarks(); len(names) > 0 {
		fmt.Println("Bookmarks:")
		for _, name := range names {
			fmt.Println("  " + name)
		}
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
