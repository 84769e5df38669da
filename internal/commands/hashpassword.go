package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klabast/wb-services/trace/internal/app"
	"github.com/klabast/wb-services/trace/internal/config"
)

var (
	hashOverwrite      bool
	hashInsecureUnmask bool
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Create the auth file protecting journal writes (Argon2id)",
	Long: `Creates the auth file with a hashed password (Argon2id). Every write
route of the HTTP API then asks for these credentials.

The file goes to TRACE_AUTH_FILE (default: <data dir>/auth.secret).`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

func init() {
	hashPasswordCmd.Flags().BoolVar(&hashOverwrite, "overwrite", false, "Overwrite existing auth file without asking")
	hashPasswordCmd.Flags().BoolVar(&hashInsecureUnmask, "insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, err := readLine(in)
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if hashInsecureUnmask {
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
		fmt.Print("Enter password:   ")
		if password, err = readLine(in); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		fmt.Print("Confirm password: ")
		if passwordConfirm, err = readLine(in); err != nil {
			return fmt.Errorf("reading password confirmation: %w", err)
		}
	} else {
		password = readPasswordWithMask("Enter password:   ")
		passwordConfirm = readPasswordWithMask("Confirm password: ")
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	err = app.CreateAuthFile(cfg.AuthFile, username, password, hashOverwrite, in, cmd.OutOrStdout())
	if errors.Is(err, app.ErrAborted) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	return err
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordWithMask reads password input and displays asterisks
func readPasswordWithMask(prompt string) string {
	fmt.Print(prompt)

	// Save original terminal state
	oldState, err := term.GetState(int(syscall.Stdin))
	if err != nil {
		// Fallback to hidden input if we can't set raw mode
		password, _ := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		return string(password)
	}
	defer term.Restore(int(syscall.Stdin), oldState)

	if _, err := term.MakeRaw(int(syscall.Stdin)); err != nil {
		password, _ := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		return string(password)
	}

	var password []rune
	reader := bufio.NewReader(os.Stdin)

	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r': // Enter key
			fmt.Print("\r\n")
			return string(password)
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				// Clear the asterisk: backspace, space, backspace
				fmt.Print("\b \b")
			}
		case 3: // Ctrl+C
			term.Restore(int(syscall.Stdin), oldState)
			fmt.Println()
			os.Exit(1)
		default:
			if char >= 32 && char != 127 {
				password = append(password, char)
				fmt.Print("*")
			}
		}
	}

	fmt.Println()
	return string(password)
}
