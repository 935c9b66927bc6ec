package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func DevCmd() *cobra.Command {
	var proxyPort, appPort int

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the server under air with live reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(proxyPort, appPort)
		},
	}

	cmd.Flags().IntVar(&proxyPort, "port", 8080, "port of the live reload proxy")
	cmd.Flags().IntVar(&appPort, "app-port", 8090, "port the server listens on")
	return cmd
}

func runDev(proxyPort, appPort int) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		fmt.Println("Missing binary: air")
		fmt.Println("Install with:")
		fmt.Println("  go install github.com/air-verse/air@latest")
		return fmt.Errorf("air not found")
	}

	fmt.Println("Building bin/do...")
	build := exec.Command("go", "build", "-o", "bin/do", "./cmd/do")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("failed to build do: %w", err)
	}

	env := append(os.Environ(), "PORT="+strconv.Itoa(appPort), "APP_ENV=development")
	return syscall.Exec(airPath, airArgs(proxyPort, appPort), env)
}

// airArgs configures air on the command line so the repo needs no .air.toml.
// Components, SQL migrations and the stylesheet trigger a rebuild like Go
// files do. Generated _templ.go files are skipped since gen rewrites them.
// Markdown pages are read from disk per request.
func airArgs(proxyPort, appPort int) []string {
	return []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "./bin/do gen && go build -o ./tmp/server ./cmd/server",
		"-build.bin", "./tmp/server",
		"-build.delay", "100",
		"-build.exclude_dir", strings.Join([]string{"bin", "tmp", "data", "public", "content", "node_modules"}, ","),
		"-build.exclude_regex", `_test.go$|_templ\.go$|output\.css$`,
		"-build.include_ext", "go,templ,css,sql",
		"-build.kill_delay", "500ms",
		"-build.send_interrupt", "true",
		"-proxy.enabled", "true",
		"-proxy.proxy_port", strconv.Itoa(proxyPort),
		"-proxy.app_port", strconv.Itoa(appPort),
	}
}
