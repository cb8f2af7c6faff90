// Package uis implements the authgate executors for a CAS style identity
// provider over net/http.
//
// A single Transport, and therefore a single cookie jar, must back both the
// Login and the gateway's RequestExecutor:
//
//	tr, _ := uis.NewTransport(uis.TransportConfig{})
//	login, _ := uis.NewLogin(uis.LoginConfig{Transport: tr})
//	gw, _ := authgate.New(authgate.Options{
//		Login:       login,
//		Requests:    tr,
//		Forms:       uis.NewFormBuilder(),
//		Credentials: creds,
//		Policy:      login.Policy(),
//	})
package uis
