package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	cssInput  = "assets/css/input.css"
	cssOutput = "assets/css/output.css"
)

// step is one code generator. upToDate reports whether its outputs are newer
// than every input.
type step struct {
	name     string
	bin      string
	args     []string
	upToDate func() bool
}

var genSteps = []step{
	{
		name:     "templ",
		bin:      "go",
		args:     []string{"tool", "templ", "generate", "-path", "internal"},
		upToDate: templUpToDate,
	},
	{
		name:     "tailwindcss",
		bin:      "tailwindcss",
		args:     []string{"-i", cssInput, "-o", cssOutput, "--minify"},
		upToDate: func() bool { return isUpToDate(cssOutput, tailwindInputs()) },
	},
}

func GenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate templ components and the tailwind stylesheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when outputs are up to date")
	return cmd
}

func runGen(force bool) error {
	if _, err := exec.LookPath("tailwindcss"); err != nil {
		fmt.Println("Missing binary: tailwindcss")
		fmt.Println("Install the standalone CLI: https://tailwindcss.com/blog/standalone-cli")
		return fmt.Errorf("tailwindcss not found")
	}

	start := time.Now()
	var g errgroup.Group
	for _, s := range genSteps {
		if !force && s.upToDate() {
			fmt.Printf("[%s] skipped\n", s.name)
			continue
		}
		g.Go(func() error {
			stepStart := time.Now()
			c := exec.Command(s.bin, s.args...)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			fmt.Printf("[%s] done (%s)\n", s.name, time.Since(stepStart).Round(time.Millisecond))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("done (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// tailwindInputs are the files whose class names end up in output.css: the
// page components and the rich text renderer.
func tailwindInputs() []string {
	inputs := []string{cssInput}
	inputs = append(inputs, filesWithSuffix([]string{"internal/ui", "internal/richtext"}, ".templ", ".go")...)
	return inputs
}

// templUpToDate reports whether every .templ file has a newer _templ.go.
func templUpToDate() bool {
	for _, src := range filesWithSuffix([]string{"internal"}, ".templ") {
		out := strings.TrimSuffix(src, ".templ") + "_templ.go"
		if !isUpToDate(out, []string{src}) {
			return false
		}
	}
	return true
}

func filesWithSuffix(roots []string, suffixes ...string) []string {
	var files []string
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			for _, suffix := range suffixes {
				if strings.HasSuffix(path, suffix) {
					files = append(files, path)
					break
				}
			}
			return nil
		})
	}
	return files
}

func isUpToDate(output string, inputs []string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}

	for _, input := range inputs {
		inInfo, err := os.Stat(input)
		if err == nil && inInfo.ModTime().After(outInfo.ModTime()) {
			return false
		}
	}
	return true
}
