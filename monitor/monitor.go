package monitor

import (
	"github.com/gin-gonic/gin"
)

// RegisterMonitorPage mounts a small self-contained status page that
// polls the health endpoint and tails the server log.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(200, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Site Monitor — Server Status</title>
  <style>
    body {
      background: #0f0f0f;
      color: #e0e0e0;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      padding: 20px;
    }
    .card {
      background: rgba(255, 255, 255, 0.05);
      border: 1px solid rgba(255, 255, 255, 0.1);
      border-radius: 12px;
      padding: 1.5rem;
      margin-bottom: 1.5rem;
      max-width: 1000px;
    }
    #status { font-size: 1.2rem; font-weight: 600; }
    #logs {
      white-space: pre-wrap;
      font-family: monospace;
      font-size: 0.85rem;
      max-height: 500px;
      overflow-y: auto;
    }
  </style>
</head>
<body>
  <h1>Construction Monitoring API</h1>
  <div class="card"><div id="status">Checking...</div></div>
  <div class="card"><div id="logs">Provide ?token= to view logs.</div></div>
  <script>
    const token = new URLSearchParams(location.search).get('token');

    async function refreshStatus() {
      try {
        const res = await fetch('/api/v1/health');
        const body = await res.json();
        document.getElementById('status').textContent =
          res.ok ? '🟢 ' + body.message : '🔴 Unhealthy (' + res.status + ')';
      } catch (e) {
        document.getElementById('status').textContent = '🔴 Unreachable';
      }
    }

    async function refreshLogs() {
      if (!token) return;
      try {
        const res = await fetch('/logs?token=' + encodeURIComponent(token));
        if (res.ok) {
          const text = await res.text();
          const el = document.getElementById('logs');
          el.textContent = text.split('\n').slice(-200).join('\n');
          el.scrollTop = el.scrollHeight;
        }
      } catch (e) {}
    }

    refreshStatus();
    refreshLogs();
    setInterval(refreshStatus, 5000);
    setInterval(refreshLogs, 10000);
  </script>
</body>
</html>`))
	})
}
