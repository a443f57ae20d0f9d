// Package tasks runs catalog operations that span several API requests, with
// real-time progress reporting.
//
// # Operations
//
//  1. [CatalogEngine.Statistics] : total books and readers plus how many of
//     each were created today. Books and readers are fetched sequentially.
//
//  2. Bulk changes: [CatalogEngine.AssignBooks], [CatalogEngine.UnassignBooks],
//     [CatalogEngine.DeleteBooks] and [CatalogEngine.DeleteReaders]
//     - A bounded worker pool issues the requests
//     - A [rate.Limiter] caps the request rate
//     - Per-item failures are collected, not fatal
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends use
// select with default so a slow or absent consumer never blocks the work.
package tasks
