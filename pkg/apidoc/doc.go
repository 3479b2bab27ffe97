// Package apidoc embeds the OpenAPI description of the template kit REST
// endpoints and serves it as JSON.
package apidoc
