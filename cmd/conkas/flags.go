package main

import "gopkg.in/urfave/cli.v1"

// Flags mirror spec.md §6's CLI surface exactly:
//
//	conkas <file> [--solidity-file|-s] [--verbosity|-v LEVEL]
//	              [--vuln-type|-vt NAME]* [--max-depth|-md N]
//	              [--find-all-vulnerabilities|-fav] [--timeout|-t MS]
var (
	solidityFileFlag = cli.BoolFlag{
		Name:  "solidity-file, s",
		Usage: "treat <file> as a Solidity source instead of a raw bytecode hex blob",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity, v",
		Value: "info",
		Usage: "log verbosity (crit, error, warn, info, debug, trace)",
	}
	vulnTypeFlag = cli.StringSliceFlag{
		Name:  "vuln-type, vt",
		Usage: "vulnerability type to check (repeatable); default is all types",
	}
	maxDepthFlag = cli.IntFlag{
		Name:  "max-depth, md",
		Value: 25,
		Usage: "max analyzed basic blocks per trace",
	}
	findAllFlag = cli.BoolFlag{
		Name:  "find-all-vulnerabilities, fav",
		Usage: "keep exploring an analysis after its first finding",
	}
	timeoutFlag = cli.IntFlag{
		Name:  "timeout, t",
		Value: 100,
		Usage: "solver timeout per query, in milliseconds",
	}
	solcPathFlag = cli.StringFlag{
		Name:  "solc",
		Value: "solc",
		Usage: "path to the solc binary, used only with --solidity-file",
	}
)
