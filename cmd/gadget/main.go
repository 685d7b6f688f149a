package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"

	yml "github.com/go-yaml/yaml"

	"github.com/inspectra/gadget/dataset"
	"github.com/inspectra/gadget/export"
	"github.com/inspectra/gadget/session"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "gadget.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:     ":8000",
		Datasets: []DatasetSpec{}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `gadget serves measurement files over HTTP: reshaping swept columns into
grids, running filter pipelines and extracting linecuts, so analysis
clients in any language can work from the processed arrays.

Usage:
	gadget <command>

Commands:
	run
	convert
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `gadget is configured via its .yml file.  For a primer on YAML, see
https://yaml.org/start.html

Each entry under datasets names one measurement file:

datasets:
  - label: chip42
    path: /data/chip42/gate_sweep.dat
    delimiter: ""          # empty means any whitespace
    filters: sweep.filters # optional saved filter file
    live: false            # poll for growth while a sweep runs

Files are delimited text with one sample per line.  A line starting
with # names the channels; without one, columns are numbered.  With
three or more channels the first two are taken as the swept and
stepped axes and the last as the value channel; the selection can be
changed per dataset over HTTP.

convert writes the processed arrays of a single file to FITS:
	gadget convert in.dat out.fits [filters.yaml]`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("gadget version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	mux, err := BuildServer(context.Background(), c)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

// convert loads one measurement file, optionally applies a saved
// filter pipeline, and writes the processed arrays to FITS.
func convert(args []string) {
	if len(args) < 2 {
		log.Fatal("usage: gadget convert <in.dat> <out.fits> [filters.yaml]")
	}
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[59],
		Suffix:          " converting " + args[0],
		StopCharacter:   "done",
		SuffixAutoColon: true,
	})
	if err == nil {
		spinner.Start()
		defer spinner.Stop()
	}
	d, err := dataset.Load(args[0], "")
	if err != nil {
		log.Fatal(err)
	}
	if len(args) > 2 {
		p, err := session.Load(args[2])
		if err != nil {
			log.Fatal(err)
		}
		d.Filters = p
		if err := d.Refresh(); err != nil {
			log.Fatal(err)
		}
	}
	if err := export.SaveFits(args[1], d); err != nil {
		log.Fatal(err)
	}
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "convert":
		convert(args[2:])
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
