package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mikey/attachment-router/internal/utils"
	"go.uber.org/zap"
)

// crlf joins lines the way mail on the wire is framed
func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

// floodZonesMessage is multipart/mixed with an inline text body, a CSV
// attachment and a PNG attachment
func floodZonesMessage() []byte {
	return crlf(
		"From: gis-exports@austintexas.gov",
		"To: ingest@example.org",
		"Subject: Flood zone export",
		"X-SES-Spam-Verdict: PASS",
		"X-SES-Virus-Verdict: PASS",
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=\"outer\"",
		"",
		"--outer",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Disposition: inline",
		"",
		"Latest export attached.",
		"--outer",
		"Content-Type: text/csv; name=\"flood_zones.csv\"",
		"Content-Disposition: attachment; filename=\"flood_zones.csv\"",
		"Content-Transfer-Encoding: base64",
		"",
		"em9uZSxyaXNrCkEsaGlnaAo=",
		"--outer",
		"Content-Type: image/png",
		"Content-Disposition: attachment; filename=\"map.png\"",
		"Content-Transfer-Encoding: base64",
		"",
		"iVBORw0KGgo=",
		"--outer--",
		"",
	)
}

const floodZonesCSV = "zone,risk\nA,high\n"

func plainMessage() []byte {
	return crlf(
		"From: someone@example.org",
		"Subject: no attachments",
		"Content-Type: text/plain",
		"",
		"Just text.",
		"",
	)
}

func newTestExtractor() *Extractor {
	return NewExtractor(utils.NewFilenameNormalizer(zap.NewNop()), zap.NewNop())
}

func newTestRouter() *Router {
	return NewRouter(NewClassifier([]string{"csv", "xlsx"}), Destination{
		Bucket:        "outbound",
		CurrentPrefix: "current",
		ArchivePrefix: "archive",
	})
}

var march15 = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

// memStore is an in-memory MessageSource and ObjectStore
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	order    []string
	puts     int
	failOn   int
	failErr  error
	latest   Location
	fetchErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Fetch(ctx context.Context, loc Location) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	data, ok := m.objects[loc.String()]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

func (m *memStore) Latest(ctx context.Context, bucket, prefix string) (Location, error) {
	if m.latest.Key == "" {
		return Location{}, ErrNoObjects
	}
	return m.latest, nil
}

func (m *memStore) Put(ctx context.Context, obj *StorageObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failOn > 0 && m.puts == m.failOn {
		return m.failErr
	}
	key := Location{Bucket: obj.Bucket, Key: obj.Key}.String()
	m.objects[key] = append([]byte(nil), obj.Data...)
	m.order = append(m.order, key)
	return nil
}

func (m *memStore) get(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[Location{Bucket: bucket, Key: key}.String()]
	return data, ok
}

// memLedger is an in-memory Ledger
type memLedger struct {
	digests map[string]*LedgerEntry
	seenErr error
}

func newMemLedger() *memLedger {
	return &memLedger{digests: make(map[string]*LedgerEntry)}
}

func (l *memLedger) Seen(ctx context.Context, digest string) (bool, error) {
	if l.seenErr != nil {
		return false, l.seenErr
	}
	_, ok := l.digests[digest]
	return ok, nil
}

func (l *memLedger) Get(ctx context.Context, digest string) (*LedgerEntry, error) {
	entry, ok := l.digests[digest]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (l *memLedger) Record(ctx context.Context, entry *LedgerEntry) error {
	l.digests[entry.Digest] = entry
	return nil
}

// headerVerifier rejects messages whose header lacks the wanted value
type headerVerifier struct {
	header string
	want   string
}

func (v headerVerifier) Verify(headers map[string][]string) string {
	values := headers[v.header]
	if len(values) == 0 || values[0] != v.want {
		return v.header + " mismatch"
	}
	return ""
}
