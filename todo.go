/*
	Project: Masomo dashboard - admin & student pages on top of the Masomo API
	Apps: apps/web (echo, server rendered) | apps/admin (cobra CLI)
*/
package masomo

/*
TODO: pagination: GET /courses & GET /announcements return everything; switch the Store to
	`?page=&limit=` once the API supports it (the Store still replaces its state wholesale).

TODO: lecturers & departments are fetched on every course page; cache them per process
	with a short TTL (they change a few times a year).

TODO: web: CSRF token on the POST forms (SameSite=Lax cookies only cover cross-site POSTs
	from other registrable domains).

TODO: admin: `courses import -f courses.csv` to bulk create courses at the start of a semester.

FIXME: announcements: department restricted announcements are shown to every student;
	filter by the student's department when the token carries it.
*/
