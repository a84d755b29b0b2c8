package compressor

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/Popolzen/linkalias/internal/model"
	"github.com/Popolzen/linkalias/internal/pool"
	"github.com/gin-gonic/gin"
)

// pooledWriter gzip.Writer, который можно вернуть в pool.Pool
type pooledWriter struct {
	*gzip.Writer
}

func (w pooledWriter) Reset() {
	w.Writer.Reset(io.Discard)
}

var writers = pool.New(func() pooledWriter {
	return pooledWriter{gzip.NewWriter(io.Discard)}
})

type gzipWriter struct {
	gin.ResponseWriter
	writer     pooledWriter
	compressed bool
}

func compressible(contentType string) bool {
	return strings.Contains(contentType, "application/json") || strings.Contains(contentType, "text/html")
}

func (g *gzipWriter) Write(b []byte) (int, error) {
	if compressible(g.Header().Get("Content-Type")) {
		if !g.compressed {
			g.Header().Set("Content-Encoding", "gzip")
			g.Header().Del("Content-Length")
			g.writer.Writer.Reset(g.ResponseWriter)
			g.compressed = true
		}
		return g.writer.Write(b)
	}
	return g.ResponseWriter.Write(b)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// Close дописывает gzip поток и возвращает writer в пул
func (g *gzipWriter) Close() error {
	defer writers.Put(g.writer)
	if g.compressed {
		return g.writer.Close()
	}
	return nil
}

// Compresser обрабатывает gzip сжатие
func Compresser() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Распаковка входящего запроса
		if strings.Contains(strings.ToLower(c.Request.Header.Get("Content-Encoding")), "gzip") {
			newReader, err := gzip.NewReader(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid gzip body"})
				return
			}
			c.Request.Body = newReader
			defer newReader.Close()
		}

		// 2. Подготовка сжатия ответа
		if strings.Contains(strings.ToLower(c.Request.Header.Get("Accept-Encoding")), "gzip") {
			gzipResp := &gzipWriter{
				ResponseWriter: c.Writer,
				writer:         writers.Get(),
			}
			c.Writer = gzipResp
			defer gzipResp.Close()
		}

		c.Next()
	}
}
