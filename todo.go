/*
	Project: EduTrack - student records for teachers, read-only views for parents.
*/
package edutrack

/*
TODO: stores: write a schema version next to `users` & `students` before the record shape changes again

FIXME:Edge-case:
- Create & Delete write `students` then `users`; a failure in between leaves a student without
  parent account (or a parent account without student). Both are logged (WARN) but not repaired.
  sqlx backend: run both writes in one transaction.
- Indices (edit, editsubject, delete) refer to the list as of the last Reload: two teachers
  editing at once can hit the wrong student. Address students by id in the CLI.

TODO: passwords are stored & compared in plain text (as the data format requires).
	Hash them once the stored format can change (see schema version above).

TODO: cmds:
	* resetpassword -username: teachers only
	* export -teacher: dump the students as CSV
*/
