// Package http implements the HTTP handlers for the bioreport API. It is a
// thin layer between transport and the analysis services: handlers parse and
// validate requests, delegate to the service layer, and format responses.
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/data/schema",
//	    "title": "Data Schema Error",
//	    "status": 400,
//	    "detail": "table has no log2fc column",
//	    "instance": "/api/research/analyze"
//	}
//
// Client faults (unparseable uploads, missing columns, invalid request
// bodies) map to 400-class responses; pipeline failures map to 500.
package http
