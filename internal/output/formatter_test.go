package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	AppName   string    `json:"app_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entries = []entry{
		{AppName: "github", Email: "me@example.com", CreatedAt: created},
		{AppName: "gitlab", Email: "me@example.org", CreatedAt: created},
	}
	entryColumns = []Column{{Name: "APP", Key: "AppName"}, {Name: "EMAIL", Key: "Email"}}
)

func TestPlainPrintStruct(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("plain", &out, &bytes.Buffer{})

	require.NoError(t, f.Print(entries[0]))
	assert.Equal(t, "AppName\tgithub\nEmail\tme@example.com\nCreatedAt\t2024-03-01T12:00:00Z\n", out.String())
}

func TestPlainPrintScalar(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("plain", &out, &bytes.Buffer{})

	require.NoError(t, f.Print(3))
	require.NoError(t, f.Print(created))
	assert.Equal(t, "3\n2024-03-01T12:00:00Z\n", out.String())
}

func TestPlainPrintList(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("plain", &out, &bytes.Buffer{})

	require.NoError(t, f.PrintList(entries, entryColumns))
	assert.Equal(t, "APP\tEMAIL\ngithub\tme@example.com\ngitlab\tme@example.org\n", out.String())
}

func TestPrintListRequiresSlice(t *testing.T) {
	for _, mode := range []string{"plain", "rich", "json"} {
		f := NewWithWriters(mode, &bytes.Buffer{}, &bytes.Buffer{})
		assert.Error(t, f.PrintList(entries[0], entryColumns), mode)
	}
}

func TestJSONPrintListEnvelope(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("json", &out, &bytes.Buffer{})

	require.NoError(t, f.PrintList(entries, entryColumns))

	var got struct {
		Data  []entry `json:"data"`
		Count int     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, entries, got.Data)
}

func TestJSONPrintListEmpty(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("json", &out, &bytes.Buffer{})

	require.NoError(t, f.PrintList([]entry(nil), entryColumns))
	assert.JSONEq(t, `{"data": [], "count": 0}`, out.String())
}

func TestJSONMessagesAndErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewWithWriters("json", &out, &errOut)

	f.PrintMessage("added github")
	f.PrintError(assert.AnError)
	f.PrintHint("ignored")

	assert.JSONEq(t, `{"message": "added github"}`, out.String())
	assert.JSONEq(t, `{"error": "`+assert.AnError.Error()+`"}`, errOut.String())
}

func TestRichPrintListEmptyHints(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewWithWriters("rich", &out, &errOut)

	require.NoError(t, f.PrintList([]entry{}, entryColumns))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "nothing to show")
}

func TestRichPrintListTable(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("rich", &out, &bytes.Buffer{})

	require.NoError(t, f.PrintList(entries, entryColumns))
	assert.Contains(t, out.String(), "github")
	assert.Contains(t, out.String(), "me@example.org")
}

func TestUnknownModeIsPlain(t *testing.T) {
	var out bytes.Buffer
	f := NewWithWriters("auto", &out, &bytes.Buffer{})

	f.PrintMessage("hello")
	assert.Equal(t, "hello\n", out.String())
}
