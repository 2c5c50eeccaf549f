package utils

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	"strings"
	"time"
)

const (
	// TicketIDPrefix 工单编号前缀
	TicketIDPrefix = "VDP-"
	ticketCodeLen  = 6
	base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// SubmittedAtLayout 工单提交时间的展示格式，例如 "10/16/2026, 3:04:05 PM"
	SubmittedAtLayout = "1/2/2006, 3:04:05 PM"
)

// RandomInt32 生成一个安全的随机32位整数
func RandomInt32() int32 {
	var num int32
	err := binary.Read(rand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// NewTicketID 生成形如 VDP-7K2QXA 的工单编号，不保证全局唯一
func NewTicketID() string {
	var sb strings.Builder
	sb.WriteString(TicketIDPrefix)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < ticketCodeLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(int64(uint32(RandomInt32()) % uint32(len(base36Alphabet))))
		}
		sb.WriteByte(base36Alphabet[n.Int64()])
	}
	return sb.String()
}

// FormatSubmittedAt 把时间格式化为本地化的提交时间字符串
func FormatSubmittedAt(t time.Time) string {
	return t.Format(SubmittedAtLayout)
}
