//go:build ignore

// Command generate-test-corpus writes a synthetic Markdown tree for
// benchmarking the indexer and search path.
// Usage: go run scripts/generate-test-corpus.go -files 1000 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of documents to generate")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var vocabulary = []string{
	"install", "configure", "deploy", "release", "server", "client",
	"index", "search", "query", "document", "pipeline", "service",
	"storage", "network", "cache", "watcher", "schedule", "metric",
	"upgrade", "rollback", "cluster", "replica", "snapshot", "backup",
}

var tags = []string{"guide", "ops", "api", "tutorial", "reference", "draft"}

var sections = []string{"Overview", "Prerequisites", "Steps", "Troubleshooting", "See Also"}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	dirs := []string{"guides", "reference", "notes", "ops/runbooks", "archive"}
	for i := 0; i < *numFiles; i++ {
		dir := dirs[rng.Intn(len(dirs))]
		rel := filepath.Join(dir, fmt.Sprintf("doc-%04d.md", i))
		path := filepath.Join(*outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "create dir: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, []byte(generateDoc(rng, i)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("generated %d documents in %s\n", *numFiles, *outputDir)
}

func generateDoc(rng *rand.Rand, n int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---\ntitle: %s %s %d\ntags: [%s, %s]\n---\n\n",
		capitalize(pick(rng)), capitalize(pick(rng)), n,
		tags[rng.Intn(len(tags))], tags[rng.Intn(len(tags))])

	numSections := 2 + rng.Intn(4)
	for s := 0; s < numSections; s++ {
		fmt.Fprintf(&b, "## %s\n\n", sections[rng.Intn(len(sections))])
		paragraphs := 1 + rng.Intn(3)
		for p := 0; p < paragraphs; p++ {
			words := 30 + rng.Intn(120)
			for w := 0; w < words; w++ {
				b.WriteString(pick(rng))
				if w < words-1 {
					b.WriteByte(' ')
				}
			}
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func pick(rng *rand.Rand) string {
	return vocabulary[rng.Intn(len(vocabulary))]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
