package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"hsc-firmware/pkg/globals"
)

const maxEntries = 500

type Entry struct {
	Time string `json:"time"`
	Msg  string `json:"msg"`
}

type writer struct {
	mu      sync.Mutex
	entries []Entry
}

var w *writer

// Init routes the standard logger through a bounded ring that survives
// reboots, so the settings page can show logs from before a crash
func Init() {
	w = &writer{entries: load()}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
}

func (wr *writer) Write(p []byte) (int, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	wr.entries = append(wr.entries, Entry{
		Time: time.Now().Format("01-02 15:04:05"),
		Msg:  string(p),
	})

	if len(wr.entries) > maxEntries {
		wr.entries = wr.entries[len(wr.entries)-maxEntries:]
	}

	save(wr.entries)
	return len(p), nil
}

func GetLogs() []Entry {
	if w == nil {
		return []Entry{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry{}, w.entries...)
}

func load() []Entry {
	data, err := os.ReadFile(globals.LogsPath)
	if err != nil {
		return []Entry{}
	}
	var entries []Entry
	json.Unmarshal(data, &entries)
	return entries
}

func save(entries []Entry) {
	data, _ := json.Marshal(entries)
	os.WriteFile(globals.LogsPath, data, 0644)
}
