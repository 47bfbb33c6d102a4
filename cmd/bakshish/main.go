package main

import (
	"errors"
	"fmt"
	"os"

	apperrors "github.com/aditya/bakshish/internal/errors"
)

func main() {
	err := rootCmd.Execute()
	app.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe renders API and session failures the way the apps do and
// passes anything else, such as a bad flag, through unchanged.
func describe(err error) string {
	msg := apperrors.Describe(err)
	if msg == apperrors.ErrRequestFailed.Error() && !errors.Is(err, apperrors.ErrRequestFailed) {
		return err.Error()
	}
	return msg
}
