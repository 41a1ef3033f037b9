package tracing

import (
	"io"

	"signoff/common"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// StartTracing installs the jaeger tracer as the global opentracing tracer.
// Configuration comes from the standard JAEGER_* environment variables.
func StartTracing() (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = common.GetServiceName()
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

// TracingIngress opens a server span per request and stores it in the request
// context for the handlers below. Spans are named by route template, not by
// raw URI, so ids in the path do not explode the span-name cardinality.
func TracingIngress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tracer := opentracing.GlobalTracer()
		parent, _ := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(ctx.Request.Header))

		name := ctx.FullPath()
		if name == "" {
			name = ctx.Request.RequestURI // unrouted, will 404
		}
		span := tracer.StartSpan(ctx.Request.Method+" "+name, ext.RPCServerOption(parent))
		ext.HTTPMethod.Set(span, ctx.Request.Method)
		ext.HTTPUrl.Set(span, ctx.Request.URL.String())
		defer span.Finish()

		ctx.Request = ctx.Request.WithContext(opentracing.ContextWithSpan(ctx.Request.Context(), span))
		ctx.Next()

		ext.HTTPStatusCode.Set(span, uint16(ctx.Writer.Status()))
	}
}
