package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// UpdateEnv rewrites every snapshot instead of comparing when set to 1
const UpdateEnv = "HOLDEM_UPDATE_SNAPSHOTS"

var (
	mu        sync.Mutex
	callCount = make(map[string]int)
)

// ValidateSnapshot compares the JSON encoding of obj to testdata/<test>-<n>.json
// n counts the snapshots taken by the test so far. A missing snapshot fails the test
// unless snapshots are being updated.
func ValidateSnapshot(t *testing.T, obj interface{}, msgAndArgs ...interface{}) bool {
	t.Helper()

	filename := nextFilename(t)

	objJSON, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		t.Fatalf("could not encode snapshot: %v", err)
	}

	if os.Getenv(UpdateEnv) == "1" {
		write(t, filename, objJSON)
		return true
	}

	expects, err := os.ReadFile(filename)
	if err != nil {
		t.Errorf("could not read snapshot %s: %v (set %s=1 to create it)", filename, err, UpdateEnv)
		return false
	}

	if !assert.JSONEq(t, string(expects), string(objJSON), msgAndArgs...) {
		t.Logf("snapshot %s", filename)
		return false
	}

	return true
}

func nextFilename(t *testing.T) string {
	mu.Lock()
	defer mu.Unlock()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	call := callCount[name]
	callCount[name] = call + 1

	return filepath.Join("testdata", fmt.Sprintf("%s-%d.json", name, call))
}

func write(t *testing.T, filename string, b []byte) {
	t.Helper()

	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filename, append(b, '\n'), 0o644); err != nil {
		t.Fatal(err)
	}
}
