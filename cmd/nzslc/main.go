// Command nzslc compiles SL shader source through the resolver, constant
// propagation, literal typing and the structural lowering passes, then
// emits either SL source text or the binary module encoding.
//
// Usage:
//
//	nzslc [options] <input.nzsl>
//	cat input.nzsl | nzslc [options]
//
// Options:
//
//	-o <file>                     Write output to file (default: stdout)
//	--config <file>               Use specific config file
//	--no-config                   Ignore config files
//	--binary                      Emit the binary module encoding instead of SL text
//	--minify-whitespace           Strip indentation and blank lines from SL text output
//	--tree-shaking                Drop constants, functions, structs and externals nothing reaches
//	--no-tree-shaking             Disable tree shaking even if a config file enables it
//	--used-stages <stages>        Comma-separated entry stages ("vert,frag,comp") tree shaking treats as roots
//	--keep-names <names>          Comma-separated names exempt from tree shaking
//	--allow-unknown-identifiers   Downgrade UnknownIdentifier to a warning
//	--partial                     Tolerate import statements with no resolver configured
//	--version                     Print version and exit
//	--help                        Print help and exit
//
// Config file:
//
//	nzslc looks for nzsl.json, .nzslrc or .nzslrc.json in the current
//	directory and parent directories. Config file options are overridden by
//	CLI flags.
//
// Example nzsl.json:
//
//	{
//	    "treeShaking": true,
//	    "usedStages": ["frag"],
//	    "keepNames": ["ViewProj"]
//	}
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nzsl-go/nzsl/internal/backend/sltext"
	"github.com/nzsl-go/nzsl/internal/codec"
	"github.com/nzsl-go/nzsl/internal/config"
	"github.com/nzsl-go/nzsl/internal/pipeline"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		outputFile              string
		configFile              string
		noConfig                bool
		binary                  bool
		minifyWhitespace        bool
		treeShaking             bool
		noTreeShaking           bool
		usedStages              string
		keepNames               string
		allowUnknownIdentifiers bool
		partial                 bool
		showVersion             bool
		showHelp                bool
	)

	flag.StringVar(&outputFile, "o", "", "Write output to `file`")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.BoolVar(&binary, "binary", false, "Emit the binary module encoding instead of SL text")
	flag.BoolVar(&minifyWhitespace, "minify-whitespace", false, "Strip indentation and blank lines from SL text output")
	flag.BoolVar(&treeShaking, "tree-shaking", false, "Drop declarations nothing reaches")
	flag.BoolVar(&noTreeShaking, "no-tree-shaking", false, "Disable tree shaking even if a config file enables it")
	flag.StringVar(&usedStages, "used-stages", "", "Comma-separated entry stages (vert,frag,comp) tree shaking treats as roots")
	flag.StringVar(&keepNames, "keep-names", "", "Comma-separated names to preserve")
	flag.BoolVar(&allowUnknownIdentifiers, "allow-unknown-identifiers", false, "Downgrade UnknownIdentifier to a warning")
	flag.BoolVar(&partial, "partial", false, "Tolerate import statements with no resolver configured")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print help and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nzslc - SL compiler v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: nzslc [options] <input.nzsl>\n")
		fmt.Fprintf(os.Stderr, "       cat input.nzsl | nzslc [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for nzsl.json, .nzslrc or .nzslrc.json in current and parent directories.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nzslc shader.nzsl -o shader.out.nzsl\n")
		fmt.Fprintf(os.Stderr, "  cat shader.nzsl | nzslc --tree-shaking --used-stages frag > shader.out.nzsl\n")
		fmt.Fprintf(os.Stderr, "  nzslc --binary shader.nzsl -o shader.nzslb\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		return nil
	}
	if showVersion {
		fmt.Printf("nzslc v%s (%s)\n", version, commit)
		return nil
	}

	source, inputPath, err := readInput()
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(configFile, noConfig, inputPath)
	if err != nil {
		return err
	}

	cli := config.MergeOptions{
		AllowUnknownIdentifiers: optionalTrue(allowUnknownIdentifiers),
		PartialCompilation:      optionalTrue(partial),
		NoTreeShaking:           noTreeShaking,
	}
	if treeShaking {
		cli.TreeShaking = optionalTrue(true)
	}
	if usedStages != "" {
		cli.UsedStages = splitTrimmed(usedStages)
	}
	if keepNames != "" {
		cli.KeepNames = splitTrimmed(keepNames)
	}
	printCLI := config.MergeOptions{}
	if minifyWhitespace {
		printCLI.MinifyWhitespace = optionalTrue(true)
	}

	var opts pipeline.Options
	var printOpts sltext.Options
	if cfg != nil {
		opts = cfg.Merge(cli)
		printOpts = cfg.MergePrintOptions(printCLI)
		if outputFile != "" && configPath != "" {
			fmt.Fprintf(os.Stderr, "Using config: %s\n", configPath)
		}
	} else {
		opts = (&config.Config{}).Merge(cli)
		printOpts = (&config.Config{}).MergePrintOptions(printCLI)
	}

	p := pipeline.New(opts)
	result, diags, fatal := p.Compile(string(source), inputPath)
	if diags.HasErrors() {
		fmt.Fprint(os.Stderr, diags.Format())
		return fmt.Errorf("compilation failed with %d diagnostic(s)", diags.Count())
	}
	if fatal != nil {
		return fmt.Errorf("compilation failed: %w", fatal)
	}

	var output []byte
	if binary {
		output, err = codec.Encode(result.Module)
	} else {
		output, err = p.Emit(result, sltext.New(printOpts, result.Ctx))
	}
	if err != nil {
		return fmt.Errorf("emitting output: %w", err)
	}

	return writeOutput(outputFile, output)
}

func readInput() (source []byte, path string, err error) {
	if flag.NArg() > 0 {
		path = flag.Arg(0)
		source, err = os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("reading input: %w", err)
		}
		return source, path, nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		flag.Usage()
		return nil, "", fmt.Errorf("no input file specified")
	}
	source, err = io.ReadAll(os.Stdin)
	if err != nil {
		return nil, "", fmt.Errorf("reading stdin: %w", err)
	}
	return source, "<stdin>", nil
}

func loadConfig(configFile string, noConfig bool, inputPath string) (*config.Config, string, error) {
	if noConfig {
		return nil, "", nil
	}
	if configFile != "" {
		cfg, err := config.LoadFile(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("loading config file %s: %w", configFile, err)
		}
		return cfg, configFile, nil
	}

	startDir, _ := os.Getwd()
	if inputPath != "" && inputPath != "<stdin>" {
		startDir = filepath.Dir(inputPath)
	}
	cfg, configPath, err := config.Load(startDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

func writeOutput(outputFile string, data []byte) error {
	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}
	if _, err := output.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func optionalTrue(v bool) *bool {
	if !v {
		return nil
	}
	t := true
	return &t
}
