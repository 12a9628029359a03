// Package testutil provides an httptest-backed server component for
// end-to-end HTTP tests.
//
//	store := redistest.NewComponent()
//	srv := testutil.NewComponent(func(s *server.Server) {
//		b := bridge.New(bridge.FromHandle(store.Handle()))
//		server.NewBridgeHandler(b).Register(s.Engine())
//	})
//	kvtest.T(t).Setup(store, srv)
//	resp, _ := http.Post(srv.BaseURL()+"/v1/ping", "application/json", nil)
package testutil
