/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package pool

import (
	"context"
	"fmt"
	"io"
	"net/http"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"

	libcnn "github/sabouaram/httpool/connection"
	libori "github/sabouaram/httpool/origin"
)

// prx routes requests through an HTTP proxy. Clear-text requests are
// forwarded on connections pooled under the proxy origin, with the target
// rewritten to absolute-form and the proxy headers prepended. Https requests
// are tunnelled: a CONNECT exchange upgrades an intermediate proxy
// connection into a socket on which a regular connection, pooled under the
// target origin, performs TLS against the target.
//
// HTTP/2 is disabled on both the forwarded and the tunnelled connections.
type prx struct {
	*pool

	po libori.Origin
	ph libori.Headers
	pm ProxyMode
}

// NewProxy returns a connection pool routing requests through the proxy at
// proxyOrigin. The proxyHeaders are placed ahead of the caller's headers in
// the header sequence of every forwarded request, and are sent on every
// CONNECT exchange. The HTTP/1.1 connection writes headers grouped by name in
// sorted name order, so the order between distinct names is not kept on the
// wire.
func NewProxy(cfg Config, proxyOrigin libori.Origin, proxyHeaders libori.Headers, mode ProxyMode) (ConnectionPool, liberr.Error) {
	if proxyOrigin.IsZero() {
		return nil, ErrorParamInvalid.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &prx{
		pool: newPool(cfg),
		po:   proxyOrigin,
		ph:   proxyHeaders.Clone(),
		pm:   mode,
	}, nil
}

func (o *prx) Request(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error) {
	if o.pm == ProxyModeForwardOnly || (o.pm == ProxyModeDefault && !u.Origin().IsTLS()) {
		return o.forward(ctx, method, u, hdr, body, tmo)
	}

	return o.tunnel(ctx, method, u, hdr, body, tmo)
}

// forward sends the request on a connection to the proxy itself, with the
// entire target URL as the request target.
func (o *prx) forward(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error) {
	var wire = libori.URL{
		Scheme: o.po.Scheme,
		Host:   o.po.Host,
		Port:   o.po.Port,
		Target: u.Absolute(),
	}

	var snd = hdr.Prepend(o.ph)

	if _, ok := snd.Get("Host"); !ok {
		snd = snd.Prepend(libori.Headers{{Key: "Host", Value: u.Origin().HostHeader()}})
	}

	return o.dispatch(ctx, method, o.po, wire, snd, body, tmo, false, nil)
}

// tunnel sends the request on a connection to the target origin established
// through a CONNECT exchange with the proxy.
func (o *prx) tunnel(ctx context.Context, method string, u libori.URL, hdr libori.Headers, body io.Reader, tmo libori.Timeout) (*libori.Response, liberr.Error) {
	var org = u.Origin()

	return o.dispatch(ctx, method, org, u, hdr, body, tmo, false, func(ctx context.Context, tmo libori.Timeout) (libcnn.Connection, liberr.Error) {
		return o.connectTunnel(ctx, org, tmo)
	})
}

// connectTunnel opens an intermediate connection to the proxy, issues the
// CONNECT, drains its response and hands the upgraded socket to a fresh
// connection bound to the target origin. The intermediate connection is
// never pooled.
func (o *prx) connectTunnel(ctx context.Context, org libori.Origin, tmo libori.Timeout) (libcnn.Connection, liberr.Error) {
	var pc = o.factory()(libcnn.Config{
		Origin: o.po,
		HTTP2:  false,
		TLS:    o.t,
	})

	if f := o.l.Load(); f != nil {
		pc.SetLogger(f)
	}

	var wire = libori.URL{
		Scheme: o.po.Scheme,
		Host:   o.po.Host,
		Port:   o.po.Port,
		Target: org.Addr(),
	}

	rsp, err := pc.Request(ctx, http.MethodConnect, wire, o.ph.Clone().Set("Host", org.Addr()), nil, tmo)

	if err != nil {
		_ = pc.Close()
		return nil, err
	}

	// drain without closing the socket, so the tunnel survives the exchange
	if _, e := io.Copy(io.Discard, rsp.Body); e != nil {
		_ = rsp.Body.Close()
		_ = pc.Close()
		return nil, ErrorProxyConnect.Error(e)
	}

	_ = rsp.Body.Close()

	if !rsp.IsSuccess() {
		_ = pc.Close()
		o.logEntry(loglvl.ErrorLevel, "proxy refused tunnel").FieldAdd("proxy", o.po.String()).FieldAdd("target", org.String()).FieldAdd("status", rsp.Status).Log()
		//nolint #goerr113
		return nil, ErrorProxyConnect.Error(fmt.Errorf("%d %s", rsp.Status, rsp.Reason))
	}

	var con = pc.Hijack()

	if con == nil {
		return nil, ErrorProxyConnect.Error(nil)
	}

	var cnn = o.factory()(libcnn.Config{
		Origin: org,
		HTTP2:  false,
		TLS:    o.t,
		Socket: con,
	})

	if f := o.l.Load(); f != nil {
		cnn.SetLogger(f)
	}

	return cnn, nil
}
