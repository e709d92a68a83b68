package index

import (
	"bytes"
	"encoding/binary"
)

// key = chapter + 0x00 + order(8)
func makeTopicKey(chapter string, order int) []byte {
	if order < 0 {
		order = 0
	}
	buf := make([]byte, 0, len(chapter)+1+8)
	buf = append(buf, []byte(chapter)...)
	buf = append(buf, 0x00)
	return binary.BigEndian.AppendUint64(buf, uint64(order))
}

func topicPrefix(chapter string) []byte {
	return append([]byte(chapter), 0x00)
}

// key = position(8) + 0x00 + code, so a tag lists lessons in input order
func makePositionCodeKey(pos int, code string) []byte {
	buf := make([]byte, 0, 8+1+len(code))
	buf = binary.BigEndian.AppendUint64(buf, uint64(pos))
	buf = append(buf, 0x00)
	return append(buf, []byte(code)...)
}

func codeFromPositionCodeKey(k []byte) string {
	if len(k) < 8+1 {
		return ""
	}
	i := bytes.IndexByte(k[8:], 0x00)
	if i != 0 {
		return ""
	}
	return string(k[9:])
}

// key = invTime(8) + seq(8), newest first
func makeRunKey(unixNano int64, seq uint64) []byte {
	buf := make([]byte, 0, 16)
	buf = binary.BigEndian.AppendUint64(buf, ^uint64(unixNano))
	return binary.BigEndian.AppendUint64(buf, seq)
}
