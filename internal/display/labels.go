package display

// Status labels shown on the dashboard. The Japanese strings are the exact
// text the UI displays.
const (
	StatusConnecting   = "接続中..."      // initial connect in progress
	StatusMonitoring   = "監視中"        // live, receiving snapshots
	StatusConnError    = "センサー接続エラー"  // sensor endpoint returned a non-2xx status
	StatusCommFailure  = "センサー通信失敗"   // network or decode failure
	StatusReconnecting = "カメラ再接続中..." // camera stream reconnecting
)
