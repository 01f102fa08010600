package cmds

import (
	"debug/elf"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gobindep/gobindep/pkg/config"
	"github.com/gobindep/gobindep/pkg/gobinary"
	"github.com/gobindep/gobindep/pkg/logflags"
	"github.com/gobindep/gobindep/pkg/scan"
	"github.com/gobindep/gobindep/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// jsonOutput forces JSON output even on a terminal.
	jsonOutput bool
	// lenient makes the classifier skip unattributable files instead of failing.
	lenient bool
	// cacheSize overrides the scan result cache size.
	cacheSize int

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const gobindepCommandLongDesc = `Gobindep extracts module and package dependency information from compiled Go executables.

It locates the build-info blob and the pclntab the Go linker embeds in every
binary, reconstructs the module list and the packages compiled in, and emits
a dependency graph keyed by package@version.`

// New returns an initialized command tree.
func New() *cobra.Command {
	// Config setup and load.
	conf = config.LoadConfig()

	rootCommand = &cobra.Command{
		Use:   "gobindep",
		Short: "Gobindep extracts dependency information from Go binaries.",
		Long:  gobindepCommandLongDesc,
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debug logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output (binary, pclntab, classifier, scan).")
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")
	addOutputFlags(rootCommand.PersistentFlags())

	depsCommand := &cobra.Command{
		Use:   "deps <binary>",
		Short: "Print the dependency graph of a Go executable.",
		Long: `Print the dependency graph of a Go executable.

The graph has one node per package@version compiled into the binary, each
connected to the root. Output is JSON when stdout is not a terminal or
--json is given, a readable tree otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: depsCmd,
	}
	rootCommand.AddCommand(depsCommand)

	scanCommand := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Analyze every Go executable under a directory.",
		Long: `Analyze every Go executable under a directory.

Regular files carrying the ELF magic are analyzed; results for identical
file contents are served from an LRU cache, so rescanning container image
layers is cheap.`,
		Args: cobra.ExactArgs(1),
		RunE: scanCmd,
	}
	rootCommand.AddCommand(scanCommand)

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gobindep %s\n%s\n", version.GobindepVersion, version.BuildInfo())
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

// addOutputFlags registers the flags shared by every command that emits a
// graph.
func addOutputFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&jsonOutput, "json", false, "Emit JSON even when stdout is a terminal.")
	fs.BoolVar(&lenient, "lenient", false, "Skip source files that cannot be attributed to a module instead of failing.")
	fs.IntVar(&cacheSize, "cache-size", 0, "Number of analysis results kept by the scan cache.")
}

func analyzeOptions() gobinary.Options {
	return gobinary.Options{
		LenientClassification: lenient || conf.LenientClassification,
	}
}

func useJSON() bool {
	if jsonOutput || conf.OutputFormat == "json" {
		return true
	}
	if conf.OutputFormat == "text" {
		return false
	}
	return !isatty.IsTerminal(os.Stdout.Fd())
}

func depsCmd(cmd *cobra.Command, args []string) error {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		return err
	}
	defer logflags.Close()

	f, err := elf.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	bin, err := gobinary.AnalyzeWithOptions(f, analyzeOptions())
	if err != nil {
		return err
	}
	return printGraph(os.Stdout, bin)
}

func scanCmd(cmd *cobra.Command, args []string) error {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		return err
	}
	defer logflags.Close()

	size := cacheSize
	if size == 0 && conf.CacheSize != nil {
		size = *conf.CacheSize
	}
	scanner, err := scan.New(size, analyzeOptions())
	if err != nil {
		return err
	}
	results, err := scanner.ScanDir(args[0])
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
			continue
		}
		fmt.Printf("%s:\n", res.Path)
		if err := printGraph(os.Stdout, res.Binary); err != nil {
			return err
		}
	}
	return nil
}

func printGraph(w io.Writer, bin *gobinary.GoBinary) error {
	graph := bin.DepGraph()
	if useJSON() {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(graph)
	}
	printTree(w, bin)
	return nil
}

func printTree(w io.Writer, bin *gobinary.GoBinary) {
	fmt.Fprintf(w, "%s (%s)\n", bin.Name, bin.GoVersion)
	for _, mod := range bin.Modules {
		if mod.Main {
			continue
		}
		fmt.Fprintf(w, "  %s\n", mod.FullName())
		for _, pkg := range mod.Packages() {
			fmt.Fprintf(w, "    %s\n", pkg)
		}
	}
}
