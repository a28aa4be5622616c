package job

import (
	"errors"
	"fmt"
	"reflect"
	"unicode"

	"github.com/dtnitsch/site-cloner/pkg/renderer"
)

const nameNotResolvedMessage = "The URL could not be found. Please check the address for typos."

// UserMessage converts a job error into the message shown to clients.
// Name resolution failures get a specific hint; everything else names the
// error kind and points at the logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if renderer.IsNameNotResolved(err) {
		return nameNotResolvedMessage
	}
	return fmt.Sprintf("An error occurred: %s. Check logs for details.", errorKind(err))
}

// errorKind names the innermost error type, e.g. "NavigationError".
func errorKind(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}

	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	// unexported types such as errors.errorString say nothing useful
	if name == "" || unicode.IsLower(rune(name[0])) {
		return "Error"
	}
	return name
}
