// Package http provides HTTP handlers and middleware for the internlog API.
//
// The router exposes the following endpoints:
//   - GET /tasks?month=&year=: tasks in date order. Any failure yields an
//     empty list with 200 so the dashboard keeps rendering.
//   - POST /tasks: creates a task from {"date","description","type",
//     "timeSegments":[{"startTime","endTime"}]} or the older flat
//     {"startTime","endTime"} pair. Responds 201 with the stored task.
//   - PUT /tasks: partial update. Body carries "id" (or "_id") plus the
//     fields to replace. Responds 200 with the merged task.
//   - DELETE /tasks?id=: responds {"message":"Task deleted"}.
//   - GET /profile, POST /profile: the single report profile; GET answers
//     null when none is stored, POST answers 201 on create and 200 on update.
//   - GET /summary?month=&year=: dashboard totals for a month.
//   - POST /reports/preview, POST /reports/export: compose or render the
//     monthly report from a draft {"month","year","objectives","summary",
//     "learningOutcomes","toolsTechnologies"}. Export streams application/pdf
//     with an ETag derived from the content.
//   - GET /healthz: storage ping.
//
// Validation failures answer 400 with {"error", "errors": {field: message}}.
// Request/response DTOs live alongside their respective handlers.
package http
