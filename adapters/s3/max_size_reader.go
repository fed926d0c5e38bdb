package s3

import (
	"fmt"
	"io"
)

var ErrReachLimitType *ReachLimitError

type ReachLimitError struct {
	MaxBytes int64
}

func (e *ReachLimitError) Error() string {
	return fmt.Sprintf("reach limit of %s", FormatBytes(e.MaxBytes))
}

// NewMaxSizeReader 包裝一個 reader 並限制可讀取的總長度
// 一旦超過 maxSize 就回傳 ReachLimitError，用來擋下過大的圖片上傳
func NewMaxSizeReader(r io.Reader, maxSize int64) io.Reader {
	return &maxSizeReader{reader: r, limit: maxSize, remain: maxSize}
}

type maxSizeReader struct {
	reader io.Reader
	limit  int64 // 限制的總長度
	remain int64 // 還可以讀取的長度
}

func (r *maxSizeReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	// 只多讀一個 byte 就足以判斷是否超過限制
	if int64(len(p)) > r.remain+1 {
		p = p[:r.remain+1]
	}
	n, err = r.reader.Read(p)

	if int64(n) <= r.remain {
		r.remain -= int64(n)
		return n, err
	}

	// 讀到的內容超過剩餘額度，截斷並回報超限
	n = int(r.remain)
	r.remain = 0
	return n, &ReachLimitError{r.limit}
}
