package image

import (
	"fmt"
	"math/rand"
	"path"
	"strings"
	"sync"
	"time"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const suffixLength = 6

var (
	suffixOnce sync.Once
	suffixRand *rand.Rand
	suffixMu   sync.Mutex
)

func randomSuffix() string {
	suffixOnce.Do(func() {
		suffixRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	})
	suffixMu.Lock()
	defer suffixMu.Unlock()
	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = suffixAlphabet[suffixRand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}

// Filename builds a name that sorts lexicographically by capture time with
// millisecond resolution, plus a short random suffix to avoid collisions
// within the same timestamp, e.g. 20260831T142301.044-k3p9x2.jpeg.
func Filename(now time.Time, format string) string {
	t := now.UTC()
	ts := fmt.Sprintf("%s.%03d", t.Format("20060102T150405"), t.Nanosecond()/int(time.Millisecond))
	return fmt.Sprintf("%s-%s.%s", ts, randomSuffix(), normalizeFormat(strings.ToLower(format)))
}

// RelativePath buckets filename under root by year and zero-padded month:
// <root>/<yyyy>/<mm>/<filename>.
func RelativePath(root string, now time.Time, filename string) string {
	t := now.UTC()
	return path.Join(root, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), filename)
}
