package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jtodic/rustc-bisect/pkg/bisectrustc"
	"github.com/jtodic/rustc-bisect/pkg/bound"
	"github.com/jtodic/rustc-bisect/pkg/classify"
	"github.com/jtodic/rustc-bisect/pkg/repo"
	"github.com/jtodic/rustc-bisect/pkg/search"
	"github.com/jtodic/rustc-bisect/pkg/toolchain"
)

// Host is the default host target triple, normally supplied at build time
// via -ldflags, mirroring the original tool's option_env!("HOST").
var Host = "x86_64-unknown-linux-gnu"

var flags struct {
	start         string
	end           string
	regress       string
	alt           bool
	host          string
	target        string
	preserve      bool
	preserveTarget bool
	withCargo     bool
	withSrc       bool
	testDir       string
	prompt        bool
	verboseCount  int
	byCommit      bool
	access        string
	install       string
	forceInstall  bool
	script        string
}

var rootCmd = &cobra.Command{
	Use:   "bisect-rustc",
	Short: "Find the exact rustc release that introduced or fixed a regression",
	Long: `bisect-rustc locates the exact compiler release that changed the
observable behavior of a program. Given a known-good bound and a
known-bad bound it narrows a regression first to a pair of adjacent
nightly builds, then, on request, to the single CI-built commit between
them.

Getting started:
  bisect-rustc --start 2018-07-07 --end 2018-07-30 -- build
  bisect-rustc --start <good_sha> --end <bad_sha> --by-commit -- check
  bisect-rustc --install 2019-05-01`,
	Example: `  # Narrow a regression to a pair of adjacent nightlies
  bisect-rustc --start 2018-07-07 --end 2018-07-30 -- build

  # Descend all the way to the offending commit
  bisect-rustc --start 2018-07-07 --end 2018-07-30 --by-commit -- build

  # Bisect directly over a known commit range
  bisect-rustc --start abc123 --end def456 -- check

  # Install a single toolchain and exit
  bisect-rustc --install 2019-05-01`,
	Version:      "0.1.0",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.start, "start", "", "lower bound (YYYY-MM-DD or a commit ref); must not reproduce")
	f.StringVar(&flags.end, "end", "", "upper bound (YYYY-MM-DD or a commit ref); must reproduce")
	f.StringVar(&flags.regress, "regress", "error", "error|non-error|ice|non-ice|success")
	f.BoolVar(&flags.alt, "alt", false, "use the alternate CI build flavor")
	f.StringVar(&flags.host, "host", Host, "host target triple")
	f.StringVar(&flags.target, "target", "", "additional cross-compile target triple to install")
	f.BoolVar(&flags.preserve, "preserve", false, "do not remove installed toolchains after each probe")
	f.BoolVar(&flags.preserveTarget, "preserve-target", false, "keep the test project's build directory between probes")
	f.BoolVar(&flags.withCargo, "with-cargo", false, "also download the cargo component")
	f.BoolVar(&flags.withSrc, "with-src", false, "also download the rust-src component")
	f.StringVar(&flags.testDir, "test-dir", "", "project root to build under each probe (default: current directory)")
	f.BoolVar(&flags.prompt, "prompt", false, "ask the user to confirm the verdict after each probe")
	f.CountVarP(&flags.verboseCount, "verbose", "v", "increase verbosity (-vv streams the build subprocess output)")
	f.BoolVar(&flags.byCommit, "by-commit", false, "after the nightly phase, descend to commit-level attribution")
	f.StringVar(&flags.access, "access", "checkout", "github|checkout: which repository accessor to use")
	f.StringVar(&flags.install, "install", "", "install only this toolchain (date or commit) and exit")
	f.BoolVar(&flags.forceInstall, "force-install", false, "overwrite an already-installed toolchain")
	f.StringVar(&flags.script, "script", "", "run this executable instead of `cargo build`")
}

// Execute runs the root command, exiting with a matching status code on
// failure — including the precise code carried by a *bisectrustc.ExitError.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		bisectrustc.PrintError(os.Stderr, bisectrustc.DefaultColorer, err)
		if code, ok := bisectrustc.ExitCode(err); ok {
			os.Exit(code)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, trailingArgs []string) error {
	mode, err := classify.ParseMode(flags.regress)
	if err != nil {
		return err
	}

	rustupHome := os.Getenv("RUSTUP_HOME")
	if rustupHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving default toolchains root: %w", err)
		}
		rustupHome = home + "/.rustup"
	}

	testDir, err := toolchain.ResolveTestDir(flags.testDir)
	if err != nil {
		return fmt.Errorf("resolving --test-dir: %w", err)
	}

	testTemplate := toolchain.TestConfig{
		TestDir:   testDir,
		Script:    flags.script,
		Args:      trailingArgs,
		StreamOut: flags.verboseCount >= 2,
	}
	if flags.script == "" && len(trailingArgs) > 0 {
		// `-- check --release` runs `cargo check --release`; with no
		// trailing args the subcommand defaults to `build`.
		testTemplate.Subcommand = trailingArgs[0]
		testTemplate.Args = trailingArgs[1:]
	}

	lifecycle := toolchain.NewLifecycle(rustupHome)
	prober := &bisectrustc.Prober{
		Lifecycle: lifecycle,
		ParamsTemplate: toolchain.DownloadParams{
			WithCargo: flags.withCargo,
			WithSrc:   flags.withSrc,
		},
		TestTemplate: testTemplate,
		Mode:         mode,
		Preserve:     flags.preserve,
		ForceInstall: flags.forceInstall,
	}
	if flags.prompt {
		prober.Prompt = newStdinPrompter(os.Stdin, os.Stdout)
	}

	ctx := context.Background()

	orchestrator := bisectrustc.New(bisectrustc.Config{
		Host:     flags.host,
		Target:   flags.target,
		Access:   buildAccessor(ctx),
		Resolver: toolchain.NewResolver(nil),
		Prober:   prober,
		ByCommit: flags.byCommit,
		Alt:      flags.alt,
	})

	if flags.install != "" {
		b, err := bound.Parse(flags.install)
		if err != nil {
			return err
		}
		if err := orchestrator.Install(ctx, b, flags.forceInstall); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "installed %s\n", b)
		return nil
	}

	if flags.end == "" {
		return errors.New("bisect-rustc: --end is required unless --install is given")
	}
	end, err := bound.Parse(flags.end)
	if err != nil {
		return fmt.Errorf("parsing --end: %w", err)
	}

	var start *bound.Bound
	if flags.start != "" {
		b, err := bound.Parse(flags.start)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		start = &b
	}

	result, err := orchestrator.Bisect(ctx, start, end)
	if err != nil {
		return err
	}

	bisectrustc.PrintReport(os.Stdout, bisectrustc.DefaultColorer, result, os.Args)
	return nil
}

// buildAccessor selects the repository accessor per --access, matching the
// github|checkout switch named in §6.
func buildAccessor(ctx context.Context) repo.Accessor {
	if strings.EqualFold(flags.access, "github") {
		return repo.NewGithubAccessor(ctx, "rust-lang", "rust", os.Getenv("GITHUB_TOKEN"))
	}
	local, err := repo.NewLocalAccessor(defaultCheckoutPath())
	if err != nil {
		// Fall back to the remote API rather than fail outright; a missing
		// local checkout is common on a first run.
		return repo.NewGithubAccessor(ctx, "rust-lang", "rust", os.Getenv("GITHUB_TOKEN"))
	}
	return local
}

func defaultCheckoutPath() string {
	if p := os.Getenv("RUST_SRC_REPO"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home + "/.cache/rustc-bisect/rust.git"
}

// stdinPrompter implements bisectrustc.Prompter over a terminal, the
// --prompt mode from §7: the user may confirm the classifier's verdict,
// invert it, or mark the probe Unknown so the search relies on a
// neighbour instead.
type stdinPrompter struct {
	in  *os.File
	out *os.File
}

func newStdinPrompter(in, out *os.File) *stdinPrompter {
	return &stdinPrompter{in: in, out: out}
}

func (p *stdinPrompter) Confirm(t toolchain.Toolchain, verdict classify.TestOutcome) search.Satisfies {
	asSatisfies := search.No
	if verdict == classify.Regressed {
		asSatisfies = search.Yes
	}

	fmt.Fprintf(p.out, "%s: classifier says %s. Confirm? [Y/n/u] ", t.Name(), verdict)
	var line string
	fmt.Fscanln(p.in, &line)
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n":
		if asSatisfies == search.Yes {
			return search.No
		}
		return search.Yes
	case "u", "unknown":
		return search.Unknown
	default:
		return asSatisfies
	}
}
