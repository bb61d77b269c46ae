package index

import (
	"bytes"
	"encoding/binary"
)

// key = pubUnixNano(8) + 0x00 + slug；字节序即发布时间升序
func makePubSlugKey(unixNano int64, slug string) []byte {
	buf := make([]byte, 0, 8+1+len(slug))

	tmp := make([]byte, 8)
	// 偏移到无符号区间，1970 之前的日期也能排对
	binary.BigEndian.PutUint64(tmp, uint64(unixNano)+1<<63)
	buf = append(buf, tmp...)

	buf = append(buf, 0x00)
	buf = append(buf, []byte(slug)...)
	return buf
}

func slugFromPubSlugKey(k []byte) string {
	if len(k) < 8+2 {
		return ""
	}
	i := bytes.IndexByte(k[8:], 0x00)
	if i < 0 {
		return ""
	}
	pos := 8 + i
	if pos+1 >= len(k) {
		return ""
	}
	return string(k[pos+1:])
}
