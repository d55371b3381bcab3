/*
Package monitoring collects Prometheus metrics for the studio host.

Metrics implements the observer interfaces of the workspace, the studio
controller and the AI assistant, so domain packages record activity
without importing Prometheus.

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
