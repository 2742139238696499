package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/framegrace/retroterm/screen/scrollhist"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	var err error
	switch args[0] {
	case "cat":
		err = runCat(args[1:])
	case "index":
		err = runIndex(args[1:])
	case "search":
		err = runSearch(args[1:])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("retrohist: %v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  retrohist cat SESSION.hist[.gz]            print a session log as text
  retrohist index DB SESSION.hist[.gz]       index a session log
  retrohist search DB QUERY                  search indexed sessions
`)
	os.Exit(2)
}

func runCat(args []string) error {
	if len(args) != 1 {
		usage()
	}
	lines, err := scrollhist.ReadSession(args[0])
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(scrollhist.LineText(line))
	}
	return nil
}

func runIndex(args []string) error {
	if len(args) != 2 {
		usage()
	}
	lines, err := scrollhist.ReadSession(args[1])
	if err != nil {
		return err
	}
	idx, err := scrollhist.NewSearchIndex(args[0])
	if err != nil {
		return err
	}
	defer idx.Close()

	now := time.Now()
	for i, line := range lines {
		if err := idx.IndexLine(int64(i), now, scrollhist.LineText(line)); err != nil {
			return err
		}
	}
	if err := idx.Flush(); err != nil {
		return err
	}
	fmt.Printf("indexed %d lines\n", len(lines))
	return nil
}

func runSearch(args []string) error {
	if len(args) != 2 {
		usage()
	}
	idx, err := scrollhist.NewSearchIndex(args[0])
	if err != nil {
		return err
	}
	defer idx.Close()

	results, err := idx.Search(args[1], 50)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%6d  %s  %s\n", r.LineIdx, r.Timestamp.Format(time.RFC3339), r.Content)
	}
	if len(results) == 0 {
		fmt.Println("no matches")
	}
	return nil
}
