// Package debug provides a centralized, categorized debug logging system
// on top of logrus. Categories are switched on with THUMBNAV_DEBUG or --debug.
package debug

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Category represents a debug logging category
type Category string

const (
	APP     Category = "APP"     // Command wiring, config, session restore
	FS      Category = "FS"      // Directory listing
	BROWSER Category = "BROWSER" // Navigation, clipboard, move/rename
	THUMB   Category = "THUMB"   // Thumbnail lookup and generation
	STORE   Category = "STORE"   // Database operations
	WATCH   Category = "WATCH"   // fsnotify events

	// Verbose, off unless asked for by name
	FS_ENTRY Category = "FS_ENTRY"
)

var (
	enabledCategories = map[Category]bool{
		APP:      false,
		FS:       false,
		BROWSER:  false,
		THUMB:    false,
		STORE:    false,
		WATCH:    false,
		FS_ENTRY: false,
	}
	categoryMu sync.RWMutex

	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	return l
}

func init() {
	// THUMBNAV_DEBUG=all, THUMBNAV_DEBUG=none or THUMBNAV_DEBUG=FS,THUMB
	if env := os.Getenv("THUMBNAV_DEBUG"); env != "" {
		Configure(env)
	}
}

// Configure parses a category spec ("all", "none" or a comma list).
func Configure(spec string) {
	categoryMu.Lock()
	defer categoryMu.Unlock()

	spec = strings.ToUpper(strings.TrimSpace(spec))
	switch spec {
	case "ALL":
		for cat := range enabledCategories {
			enabledCategories[cat] = true
		}
	case "NONE", "":
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
	default:
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
		for _, cat := range strings.Split(spec, ",") {
			cat = strings.TrimSpace(cat)
			if cat != "" {
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	if !IsEnabled(cat) {
		return
	}
	logger.WithField("cat", string(cat)).Debug(fmt.Sprintf(format, args...))
}

// Logger returns the underlying logrus logger.
func Logger() *logrus.Logger {
	return logger
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// ListEnabled returns the enabled categories in name order
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for cat, on := range enabledCategories {
		if on {
			enabled = append(enabled, cat)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i] < enabled[j] })
	return enabled
}
