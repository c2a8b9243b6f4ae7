// Command conkas is the thin CLI front end of spec.md §1 ("command-line
// front end, file I/O, logging, and pretty-printing" — explicitly out of
// the core's scope). It only parses flags, reads/compiles input, and
// prints what internal/conkas's driver and report produce.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/core-coin/conkas/internal/clog"
	"github.com/core-coin/conkas/internal/compiler"
	"github.com/core-coin/conkas/internal/conkas"
	"github.com/core-coin/conkas/internal/vuln"
)

var verbosityLevels = map[string]clog.Level{
	"crit": clog.LvlCrit, "error": clog.LvlError, "warn": clog.LvlWarn,
	"info": clog.LvlInfo, "debug": clog.LvlDebug, "trace": clog.LvlTrace,
}

func main() {
	app := cli.NewApp()
	app.Name = "conkas"
	app.Usage = "symbolic execution vulnerability scanner for EVM bytecode"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		solidityFileFlag, verbosityFlag, vulnTypeFlag, maxDepthFlag,
		findAllFlag, timeoutFlag, solcPathFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("conkas: expected exactly one <file> argument", 1)
	}
	file := ctx.Args().Get(0)

	level, ok := verbosityLevels[strings.ToLower(ctx.String("verbosity"))]
	if !ok {
		return cli.NewExitError(fmt.Sprintf("conkas: unknown verbosity %q", ctx.String("verbosity")), 1)
	}
	clog.SetLevel(level)

	contracts, err := loadContracts(ctx, file)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	cfg := conkas.DefaultConfig()
	cfg.MaxDepth = ctx.Int("max-depth")
	cfg.FindAllVulnerabilities = ctx.Bool("find-all-vulnerabilities")
	cfg.Timeout = time.Duration(ctx.Int("timeout")) * time.Millisecond
	cfg.Verbosity = level
	if names := ctx.StringSlice("vuln-type"); len(names) > 0 {
		cfg.VulnTypes = parseVulnTypes(names)
	}

	driver := conkas.New(cfg)
	anyFatal := false
	for _, c := range contracts {
		clog.Info("analysing contract", "contract", c.Name)
		if len(c.Code) == 0 {
			clog.Info("nothing to analyse", "contract", c.Name)
			continue
		}
		res := driver.AnalyzeOne(c)
		if res.Err != nil {
			clog.Error("contract analysis aborted", "contract", c.Name, "err", res.Err)
			anyFatal = true
			continue
		}
		if err := conkas.WriteReport(os.Stdout, []conkas.Result{res}); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}
	if anyFatal {
		return cli.NewExitError("conkas: one or more contracts failed to analyse", 1)
	}
	return nil
}

func parseVulnTypes(names []string) []vuln.VulnTypeName {
	out := make([]vuln.VulnTypeName, 0, len(names))
	for _, n := range names {
		out = append(out, vuln.VulnTypeName(n))
	}
	return out
}

// loadContracts reads file as either a Solidity source (compiled via solc)
// or a raw bytecode hex blob (spec.md §6 "Inputs"), matching conkas.py's
// "bytecodes[filename] = args.file.read()" / "compile_files([filename])"
// branch.
func loadContracts(ctx *cli.Context, file string) ([]conkas.Contract, error) {
	if ctx.Bool("solidity-file") {
		contracts, err := compiler.CompileFile(ctx.String("solc"), file)
		if err != nil {
			return nil, fmt.Errorf("conkas: compiling %s: %w", file, err)
		}
		return contracts, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("conkas: reading %s: %w", file, err)
	}
	code, err := decodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("conkas: %s is not valid bytecode hex: %w", file, err)
	}
	return []conkas.Contract{{Name: file, Code: code}}, nil
}

func decodeHex(raw []byte) ([]byte, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}
