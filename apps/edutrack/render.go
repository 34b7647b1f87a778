package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/edutrack/core/student"
)

func (cli *commandLine) renderStudents(students []student.Student) {
	if len(students) == 0 {
		fmt.Fprintln(cli.out, "No students yet")
		return
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, cli.color.Bold("#\tNAME\tATTENDANCE\tPARENT\tSUBJECTS"))
	for i, st := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", i, st.Name, attendance(st), st.ParentUsername, len(st.Subjects))
	}
	_ = w.Flush()
}

func (cli *commandLine) renderStudent(st student.Student) {
	fmt.Fprintln(cli.out, cli.color.Bold(st.Name))
	fmt.Fprintf(cli.out, "Attendance: %s\n", attendance(st))
	fmt.Fprintf(cli.out, "Remarks: %s\n", st.Remarks)
	if st.HasPhoto() {
		fmt.Fprintln(cli.out, "Photo: yes")
	}
	if len(st.Subjects) == 0 {
		return
	}
	fmt.Fprintln(cli.out, "Subjects:")
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for i, sg := range st.Subjects {
		fmt.Fprintf(w, "  %d\t%s\t%s\n", i, sg.Subject, cli.color.Cyan(sg.Grade))
	}
	_ = w.Flush()
}

func attendance(st student.Student) string {
	if st.Attendance == "" {
		return "-"
	}
	return st.Attendance + "%"
}
