// SPDX-License-Identifier: Apache-2.0

// Command wobblyctl loads a wobbly project file and renders one of its
// derived outputs: the VapourSynth processing script, the reduced preview
// script, a timecodes v1 file, or a keyframes v1 file.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	wobbly "github.com/wobbly-go/wobbly"
)

// config holds the operational settings read from the environment, in the
// style the orchestrator's Config structs use for their own runtime knobs.
type config struct {
	LogLevel string `envconfig:"WOBBLY_LOG_LEVEL" default:"info"`
}

var log = logrus.New()

func main() {
	var cfg config
	if err := envconfig.Process("wobbly", &cfg); err != nil {
		log.Fatalf("reading configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unrecognized WOBBLY_LOG_LEVEL %q, defaulting to info", cfg.LogLevel)
	}

	var (
		projectPath = flag.String("project", "", "path to a wobbly project file (required)")
		output      = flag.String("output", "", "output mode: script, display, timecodes, keyframes")
		decimation  = flag.String("decimation-function", "auto", "decimation form: auto, delete-frames, select-every")
		out         = flag.String("out", "-", "output path, or - for stdout")
	)
	flag.Parse()

	if *projectPath == "" {
		log.Fatal("-project is required")
	}

	f, err := os.Open(*projectPath)
	if err != nil {
		log.Fatalf("opening project: %v", err)
	}
	defer f.Close()

	project, err := wobbly.Read(f)
	if err != nil {
		log.Fatalf("reading project: %v", err)
	}
	log.WithFields(logrus.Fields{
		"input":    project.InputFile,
		"sections": len(project.Sections()),
	}).Info("loaded project")

	decFn, err := parseDecimationFunction(*decimation)
	if err != nil {
		log.Fatal(err)
	}

	var text string
	switch *output {
	case "", "script":
		text, err = project.GenerateFinalScript(true, decFn)
		if err != nil {
			log.Fatalf("generating script: %v", err)
		}
	case "display":
		text = project.GenerateMainDisplayScript()
	case "timecodes":
		text = project.GenerateTimecodesV1()
	case "keyframes":
		text = project.GenerateKeyframesV1()
	default:
		log.Fatalf("unknown -output mode %q", *output)
	}

	if *out == "-" {
		os.Stdout.WriteString(text)
		return
	}
	if err := os.WriteFile(*out, []byte(text), 0o644); err != nil {
		log.Fatalf("writing output: %v", err)
	}
}

func parseDecimationFunction(s string) (wobbly.DecimationFunction, error) {
	switch s {
	case "", "auto":
		return wobbly.DecimationAuto, nil
	case "delete-frames":
		return wobbly.DecimationDeleteFrames, nil
	case "select-every":
		return wobbly.DecimationSelectEvery, nil
	default:
		return 0, &unknownDecimationFunctionError{s}
	}
}

type unknownDecimationFunctionError struct{ value string }

func (e *unknownDecimationFunctionError) Error() string {
	return "unknown -decimation-function " + strconv.Quote(e.value)
}
