package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/hexdump"

	"github.com/tsawler/quill"
	"github.com/tsawler/quill/core"
)

func main() {
	var (
		trailer = flag.Bool("t", false, "print the trailer dictionary")
		xref    = flag.Bool("x", false, "print the xref entries")
		raw     = flag.Bool("r", false, "dump stream payloads")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: quill [-t] [-x] [-r] file.pdf")
		os.Exit(2)
	}

	doc, err := quill.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer doc.Close()

	fmt.Printf("%%PDF-%s, %d objects\n", doc.Version(), len(doc.Objects()))

	for _, obj := range doc.Objects() {
		printObject(obj, *raw)
	}

	if *xref {
		for _, entry := range doc.XRef() {
			marker := "f"
			if entry.InUse {
				marker = "n"
			}
			fmt.Printf("%d %d %s at %d\n", entry.ObjectID, entry.Generation, marker, entry.Offset)
		}
	}

	if *trailer {
		fmt.Printf("trailer %s", doc.Trailer())
	}
}

func printObject(obj *core.IndirectObject, raw bool) {
	fmt.Printf("%d %d obj", obj.ObjectID, obj.Generation)
	if len(obj.Dict) > 0 {
		fmt.Printf(" %s", obj.Dict)
	} else {
		fmt.Println()
	}

	if !raw {
		return
	}
	for _, v := range obj.Data {
		stream, ok := v.(*core.Stream)
		if !ok {
			continue
		}
		body, err := stream.Payload()
		if err != nil {
			continue
		}
		fmt.Println(hexdump.Dump(body))
	}
}
