package utils

import (
	"io"
)

func CloseOrPanic(c io.Closer) {
	if err := c.Close(); err != nil {
		panic(err)
	}
}
