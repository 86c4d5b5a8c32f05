package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

var commands = []string{"discover", "filter", "download", "project", "prune"}

// ParseArguments converts command-line arguments into a map of flags and
// values. The first recognized command word lands under the "command" key;
// flags are accepted as --key=value, --key value, or bare --key (= "true").
func ParseArguments(argv []string) map[string]string {
	args := make(map[string]string)

	commandIndex := -1
	for i, arg := range argv {
		for _, cmd := range commands {
			if arg == cmd {
				args["command"] = cmd
				commandIndex = i
				break
			}
		}
		if commandIndex >= 0 {
			break
		}
	}

	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}
		arg := argv[i]

		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") {
				args[flagName] = "true"
			} else {
				args[flagName] = argv[i+1]
				i++
			}
		}
	}

	return args
}

// GetString returns the flag value or a default when the flag is absent.
func GetString(args map[string]string, key, def string) string {
	if v, ok := args[key]; ok {
		return v
	}
	return def
}

// GetInt parses an integer flag, falling back to def when absent or malformed.
func GetInt(args map[string]string, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid value for --%s: %q, using %d\n", key, v, def)
		return def
	}
	return n
}

// GetBool reports whether a boolean flag is set.
func GetBool(args map[string]string, key string) bool {
	return args[key] == "true"
}

// PrintUsage outputs the command-line usage instructions.
func PrintUsage() {
	prog := os.Args[0]
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s discover [--config=PATH] [--out=PATH] [--debug] [--logfile=PATH]\n", prog)
	fmt.Printf("  %s filter --in=PATH --out=PATH [--year=N]\n", prog)
	fmt.Printf("  %s download --panoids=PATH [--config=PATH] [--batch-size=N] [--max=N] [--require-year] [--force]\n", prog)
	fmt.Printf("  %s project --panoids=PATH [--config=PATH] [--pano-dir=PATH] [--out-dir=PATH] [--delete]\n", prog)
	fmt.Printf("  %s prune --panoids=PATH [--pano-dir=PATH] [--dry-run]\n", prog)
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --config       : Path to config file (default: config.yaml)\n")
	fmt.Printf("  --panoids      : Path to a panoid JSON file\n")
	fmt.Printf("  --in, --out    : Input/output JSON for filter (or output for discover)\n")
	fmt.Printf("  --year         : Keep only panoramas from the given year\n")
	fmt.Printf("  --batch-size   : Panoramas per download batch (default: 50)\n")
	fmt.Printf("  --max          : Stop after downloading N panoramas\n")
	fmt.Printf("  --require-year : Skip download of undated panoramas\n")
	fmt.Printf("  --force        : Re-download panoramas already in the registry\n")
	fmt.Printf("  --pano-dir     : Stitched panorama directory (overrides config)\n")
	fmt.Printf("  --out-dir      : Cube face output directory (overrides config)\n")
	fmt.Printf("  --delete       : Remove source panoramas after projection\n")
	fmt.Printf("  --dry-run      : Print files prune would delete without deleting\n")
	fmt.Printf("  --debug        : Enable debug logging\n")
	fmt.Printf("  --logfile      : Mirror log output into the given file\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s discover --config=config.yaml\n", prog)
	fmt.Printf("  %s filter --in=panoids_1500.json --out=panoids_dated.json --year=2022\n", prog)
	fmt.Printf("  %s download --panoids=panoids_dated.json --batch-size=50\n", prog)
	fmt.Printf("  %s project --panoids=panoids_dated.json --delete\n", prog)
	fmt.Printf("  %s prune --panoids=panoids_dated.json --dry-run\n", prog)
}
