// Package request implements the departmental request queue: students
// submit categorised requests, heads of department approve or reject them.
// Completion estimates are a linear function of queue depth, fixed at
// submit time.
package request
