// Package handler holds the HTTP handlers of the blog service: post lookup
// behind the id-to-slug redirect, the slug API, cache revalidation and the
// sitemap. Handlers read through an Index, normally a *slugcache.Cache.
package handler
