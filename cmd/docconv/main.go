// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	docconv "github.com/drag9988/Render-Backend-sub001"
)

var version = "dev"

func main() {
	var (
		output      string
		target      string
		quality     string
		password    string
		remote      string
		doCompress  bool
		doProtect   bool
		showVersion bool
	)

	flag.StringVar(&output, "o", "", "Output file (default: input name with the target extension)")
	flag.StringVar(&output, "output", "", "Output file (default: input name with the target extension)")
	flag.StringVar(&target, "t", "", "Target format: pdf, docx, xlsx, pptx, md")
	flag.StringVar(&target, "to", "", "Target format: pdf, docx, xlsx, pptx, md")
	flag.StringVar(&quality, "q", "", "Compression quality: low, medium, high")
	flag.StringVar(&quality, "quality", "", "Compression quality: low, medium, high")
	flag.StringVar(&password, "p", "", "Password for --protect")
	flag.StringVar(&password, "password", "", "Password for --protect")
	flag.StringVar(&remote, "remote", "", "Remote conversion engine URL")
	flag.BoolVar(&doCompress, "compress", false, "Compress a PDF instead of converting")
	flag.BoolVar(&doProtect, "protect", false, "Password-protect a PDF instead of converting")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docconv [flags] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Convert documents between PDF, Office and Markdown formats.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  docconv -t docx report.pdf\n")
		fmt.Fprintf(os.Stderr, "  docconv -t pdf slides.pptx\n")
		fmt.Fprintf(os.Stderr, "  docconv --compress -q low big.pdf\n")
		fmt.Fprintf(os.Stderr, "  docconv --protect -p secret contract.pdf\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("docconv %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := args[0]

	var opts []docconv.Option
	if remote != "" {
		opts = append(opts, docconv.WithRemoteEngine(remote))
	}
	svc := docconv.New(opts...)

	ctx := context.Background()
	var result *docconv.Result
	var err error

	switch {
	case doCompress:
		data, readErr := os.ReadFile(inputPath)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", readErr)
			os.Exit(1)
		}
		result, err = svc.Compress(ctx, data, filepath.Base(inputPath), quality)
	case doProtect:
		if password == "" {
			fmt.Fprintf(os.Stderr, "Error: --protect requires a password (-p)\n")
			os.Exit(2)
		}
		data, readErr := os.ReadFile(inputPath)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", readErr)
			os.Exit(1)
		}
		result, err = svc.Protect(ctx, data, filepath.Base(inputPath), password)
	default:
		if target == "" {
			fmt.Fprintf(os.Stderr, "Error: a target format is required (-t)\n")
			os.Exit(2)
		}
		format, parseErr := docconv.ParseFormat(strings.ToLower(target))
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", parseErr)
			os.Exit(2)
		}
		result, err = svc.ConvertFile(ctx, inputPath, format)
	}

	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}

	if output == "" {
		switch {
		case doCompress:
			output = suffixedName(inputPath, "-compressed")
		case doProtect:
			output = suffixedName(inputPath, "-protected")
		default:
			output = result.Filename
		}
	}

	if dir := filepath.Dir(output); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	if writeErr := os.WriteFile(output, result.Output, 0o644); writeErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", writeErr)
		os.Exit(1)
	}
	fmt.Printf("%s (%d bytes, via %s)\n", output, len(result.Output), result.Winner)
}

// reportFailure prints the error and, when every strategy was tried, the
// per-strategy attempt log.
func reportFailure(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var xErr *docconv.ExhaustedError
	if errors.As(err, &xErr) {
		for _, a := range xErr.Attempts {
			if a.Err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", a.Strategy, a.Err)
			}
		}
	}
}

func suffixedName(inputPath, suffix string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + suffix + ext
}
