// Package http は外部API呼び出し用のHTTPクライアント構築を提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はプロバイダ呼び出し用に調整されたHTTPクライアントを生成します。
//
// http.DefaultClientはタイムアウトを持たないため使用しません。接続確立と
// TLSハンドシェイクには全体タイムアウトより短い上限を個別に設定し、
// 収集ジョブが多数の銘柄を順に取得してもアイドル接続を再利用できるよう
// Transportを明示的に構成しています。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
