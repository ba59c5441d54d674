package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const snapshotVersion = 1

type snapshotHeader struct {
	Version int `json:"version"`
	Tick    int `json:"tick"`
}

// WriteSnapshot persists s as zstd-compressed JSON. The file is written next
// to path and renamed into place so a crash never leaves a torn snapshot.
func WriteSnapshot(path string, tick int, s *Store) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := writeSnapshot(f, tick, s); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeSnapshot(f *os.File, tick int, s *Store) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snapshotHeader{Version: snapshotVersion, Tick: tick})
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(s); err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// ReadSnapshot restores a store written by WriteSnapshot and returns the tick
// it was taken on.
func ReadSnapshot(path string) (*Store, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, 0, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, 0, fmt.Errorf("read snapshot header: %w", err)
	}
	var h snapshotHeader
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot header: %w", err)
	}
	if h.Version != snapshotVersion {
		return nil, 0, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}

	s := &Store{}
	if err := json.NewDecoder(br).Decode(s); err != nil {
		return nil, 0, fmt.Errorf("decode memory: %w", err)
	}
	s.Init()
	return s, h.Tick, nil
}
