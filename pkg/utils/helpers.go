package utils

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// CalculateMD5 计算字节切片的MD5十六进制摘要
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// UTCTimestamp 返回UTC时间的紧凑时间戳，用于生成唯一文件名
func UTCTimestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}
