package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/app"
)

func main() {
	err := app.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var usageErr *app.UsageError
	if errors.As(err, &usageErr) {
		os.Exit(2)
	}
	os.Exit(1)
}
