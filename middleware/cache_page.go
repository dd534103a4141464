package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/cache"
)

// bodyRecorder tees the response body into a buffer.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves GET responses from vc, keyed by the request URI so every
// page number is cached separately. Only 200 responses are stored. The cached
// body must not depend on who is asking.
func CachePage(vc *cache.ViewCache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}
		key := ctx.Request.URL.RequestURI()
		if e, ok := vc.Get(ctx.Request.Context(), key); ok {
			ctx.Data(http.StatusOK, e.ContentType, e.Body)
			ctx.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: ctx.Writer}
		ctx.Writer = rec
		ctx.Next()
		ctx.Writer = rec.ResponseWriter

		if rec.Status() == http.StatusOK {
			vc.Set(ctx.Request.Context(), key, rec.body.Bytes(), rec.Header().Get("Content-Type"))
		}
	}
}
