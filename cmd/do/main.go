package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/templui/spacetraveling/cmd/do/cmd"

	"github.com/spf13/cobra"
)

func main() {
	maybeRebuild()

	rootCmd := &cobra.Command{
		Use:   "do",
		Short: "Development tools for spacetraveling",
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.GenCmd())
	rootCmd.AddCommand(cmd.BuildCmd())
	rootCmd.AddCommand(cmd.PreviewCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// doSources are the trees bin/do is built from. The build and preview
// commands link the whole site, so edits anywhere in them make bin/do stale.
var doSources = []string{"cmd/do", "internal", "assets"}

// maybeRebuild rebuilds and re-executes bin/do when a source is newer than
// the binary.
func maybeRebuild() {
	exe, err := os.Executable()
	if err != nil || !strings.HasSuffix(exe, "bin/do") {
		return
	}

	info, err := os.Stat(exe)
	if err != nil {
		return
	}
	if !newerThan(info.ModTime(), doSources...) {
		return
	}

	fmt.Println("Rebuilding bin/do...")
	build := exec.Command("go", "build", "-o", exe, "./cmd/do")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Println("Rebuild failed:", err)
		return
	}

	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		fmt.Println("Re-exec failed:", err)
	}
}

// newerThan reports whether any non-test file below roots changed after t.
func newerThan(t time.Time, roots ...string) bool {
	newer := false
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			info, err := d.Info()
			if err == nil && info.ModTime().After(t) {
				newer = true
				return filepath.SkipAll
			}
			return nil
		})
		if newer {
			return true
		}
	}
	return false
}
