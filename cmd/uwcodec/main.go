// Command uwcodec analyzes message schema documents and frames.
//
//	uwcodec analyze <schema.yaml>...   print the bit budget of each schema
//	uwcodec crc16 <hex>                CRC-16-CCITT of a hex payload
//	uwcodec crc32 <hex>                CRC-32 (IEEE) of a hex payload
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/acomms/uwcodec/export"
	"github.com/acomms/uwcodec/framing"
)

var verbose = pflag.BoolP("verbose", "v", false, "enable debug logging")

func main() {
	pflag.Usage = usage
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := pflag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "analyze":
		err = analyze(args[1:])
	case "crc16", "crc32":
		err = checksum(args[0], args[1])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %v [flags] analyze <schema.yaml>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %v [flags] crc16|crc32 <hex>\n", os.Args[0])
	pflag.PrintDefaults()
}

func analyze(paths []string) error {
	fmt.Printf("||||||| uwcodec: underwater communications codec |||||||\n")
	fmt.Printf("%v schema(s) loaded. Field sizes are in bits unless otherwise noted.\n\n", len(paths))

	for _, path := range paths {
		desc, err := export.LoadFile(path)
		if err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
		log.WithFields(log.Fields{"path": path, "message": desc.Name()}).Debug("schema loaded")
		fmt.Println(export.Text(desc))
	}
	return nil
}

func checksum(kind, arg string) error {
	data, err := hex.DecodeString(arg)
	if err != nil {
		return fmt.Errorf("payload must be hex: %w", err)
	}

	if kind == "crc16" {
		fmt.Printf("%04x\n", framing.Sum16(data))
	} else {
		fmt.Printf("%08x\n", framing.Sum32(data))
	}
	return nil
}
