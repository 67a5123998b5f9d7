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
	"bytes"
	"encoding/json"
	"fmt"

	libval "github.com/go-playground/validator/v10"
	libtls "github.com/nabbar/golib/certificates"
	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"

	libori "github/sabouaram/httpool/origin"
)

// OptionTLS enables a custom TLS configuration for https origins. When
// disabled the certificates package default applies.
type OptionTLS struct {
	Enable bool          `json:"enable" yaml:"enable" toml:"enable" mapstructure:"enable"`
	Config libtls.Config `json:"tls" yaml:"tls" toml:"tls" mapstructure:"tls"`
}

// Config carries the pool parameters.
type Config struct {
	// MaxConnections bounds the total number of pooled connections across
	// all origins. Zero means unbounded.
	MaxConnections int `json:"max_connections" yaml:"max_connections" toml:"max_connections" mapstructure:"max_connections" validate:"gte=0"`

	// MaxKeepAlive caps the number of connections retainable in the idle
	// state: when a connection goes idle while the pool holds more than
	// this many connections, it is closed instead of kept warm. Zero
	// disables the cap.
	MaxKeepAlive int `json:"max_keepalive" yaml:"max_keepalive" toml:"max_keepalive" mapstructure:"max_keepalive" validate:"gte=0"`

	// KeepAliveExpiry is the TTL of an idle connection. Expired idle
	// connections are closed by a sweep running at most once per second
	// before servicing a request. Zero keeps idle connections forever.
	KeepAliveExpiry libdur.Duration `json:"keepalive_expiry" yaml:"keepalive_expiry" toml:"keepalive_expiry" mapstructure:"keepalive_expiry"`

	// HTTP2 offers h2 during the TLS handshake of new connections.
	HTTP2 bool `json:"http2" yaml:"http2" toml:"http2" mapstructure:"http2"`

	// Timeout holds the default per-phase timeouts, merged into the zero
	// fields of each request timeout.
	Timeout libori.Timeout `json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout"`

	// TLS is the TLS option for https origins.
	TLS OptionTLS `json:"tls" yaml:"tls" toml:"tls" mapstructure:"tls"`
}

// DefaultConfig returns a JSON model of the configuration filled with sample
// values.
func DefaultConfig(indent string) []byte {
	var (
		res = bytes.NewBuffer(make([]byte, 0))
		def = []byte(`{
       "max_connections": 100,
       "max_keepalive": 10,
       "keepalive_expiry": "15s",
       "http2": true,
       "timeout": {
         "pool": "5s",
         "connect": "5s",
         "read": "30s"
       },
       "tls": {
         "enable": false,
         "tls": {}
       }
}`)
	)

	if err := json.Indent(res, def, indent, "  "); err != nil {
		return def
	} else {
		return res.Bytes()
	}
}

func (o Config) Validate() liberr.Error {
	var e = ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(o); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		}

		for _, er := range err.(libval.ValidationErrors) {
			//nolint #goerr113
			e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
		}
	}

	if o.MaxKeepAlive > 0 && o.MaxConnections > 0 && o.MaxKeepAlive > o.MaxConnections {
		//nolint #goerr113
		e.Add(fmt.Errorf("config field 'MaxKeepAlive' cannot exceed 'MaxConnections'"))
	}

	if !e.HasParent() {
		e = nil
	}

	return e
}

func (o Config) getTLS() libtls.TLSConfig {
	if o.TLS.Enable {
		cfg, _ := o.TLS.Config.New()
		return cfg
	}

	return nil
}
