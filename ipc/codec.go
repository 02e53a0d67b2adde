package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/gatcore/gat/gaterrors"
)

// maxFrameBytes bounds a single decoded frame, guarding a malformed or
// adversarial length prefix from driving an unbounded allocation.
const maxFrameBytes = 256 << 20 // 256 MiB

// writeFrame gob-encodes v and writes it to w as a 4-byte big-endian
// length prefix followed by the payload — the length-prefixed stream
// framing spec §6 calls for in place of Arrow IPC (see DESIGN.md).
func writeFrame(w io.Writer, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return gaterrors.NewDataValidation("ipc: encode failed: " + err.Error())
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(buf.Len()))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readFrame reads one length-prefixed gob frame from r and decodes it
// into v.
func readFrame(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return gaterrors.NewDataValidation("ipc: frame header: " + err.Error())
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > maxFrameBytes {
		return gaterrors.NewDataValidation("ipc: frame exceeds maximum size")
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return gaterrors.NewDataValidation("ipc: frame payload: " + err.Error())
	}
	return gob.NewDecoder(bytes.NewReader(payload)).Decode(v)
}

// WriteProblemBatch frames and writes p to w.
func WriteProblemBatch(w io.Writer, p *ProblemBatch) error {
	return writeFrame(w, p)
}

// ReadProblemBatch reads one framed ProblemBatch from r and checks its
// protocol version against this package's ProtocolVersion.
func ReadProblemBatch(r io.Reader) (*ProblemBatch, error) {
	var p ProblemBatch
	if err := readFrame(r, &p); err != nil {
		return nil, err
	}
	if p.ProtocolVersion != ProtocolVersion {
		return nil, gaterrors.NewProtocolMismatch(ProtocolVersion, p.ProtocolVersion)
	}
	return &p, nil
}

// WriteSolutionBatch frames and writes s to w. SolutionBatch carries no
// protocol_version field of its own in the reference layout — the
// problem side's version check is the only one spec §6 performs per
// round-trip.
func WriteSolutionBatch(w io.Writer, s *SolutionBatch) error {
	return writeFrame(w, s)
}

// ReadSolutionBatch reads one framed SolutionBatch from r.
func ReadSolutionBatch(r io.Reader) (*SolutionBatch, error) {
	var s SolutionBatch
	if err := readFrame(r, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
