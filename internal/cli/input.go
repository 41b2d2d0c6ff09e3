package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam over terminal input without echo.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func GetSimpleText(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Println(prompt)
	text, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GetSecret reads a value that must not be echoed, e.g. an authorization
// code pasted from the browser.
func GetSecret(prompt string) (string, error) {
	fmt.Println(prompt)
	b, err := readPassword()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
