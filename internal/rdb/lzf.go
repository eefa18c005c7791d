package rdb

import (
	"fmt"

	lzf "github.com/zhuyie/golzf"
)

// lzfDecompress expands src into exactly dstLen bytes via the LZF algorithm.
func lzfDecompress(src []byte, dstLen int) ([]byte, error) {
	dst := make([]byte, dstLen)
	n, err := lzf.Decompress(src, dst)
	if err != nil {
		return nil, wrapErr(ErrDecompression, "lzf", "decompression failed", err)
	}
	if n != dstLen {
		return nil, wrapErr(ErrDecompression, "lzf", fmt.Sprintf("expected %d bytes, got %d", dstLen, n), nil)
	}
	return dst, nil
}
