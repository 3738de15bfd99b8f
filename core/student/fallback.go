package student

import (
	"fmt"
	"strings"
	"time"
)

// FallbackCount is the size of the generated placeholder dataset.
const FallbackCount = 25

var (
	fallbackFirstNames = []string{
		"Aarav", "Priya", "Rohan", "Ananya", "Vikram",
		"Sneha", "Arjun", "Kavya", "Rahul", "Meera",
		"Aditya", "Pooja", "Karan", "Divya", "Nikhil",
		"Riya", "Sanjay", "Isha", "Manish", "Tanvi",
		"Deepak", "Shreya", "Varun", "Neha", "Amit",
	}
	fallbackLastNames = []string{
		"Sharma", "Patel", "Verma", "Gupta", "Singh",
		"Yadav", "Mishra", "Joshi", "Kumar", "Mehta",
	}
	fallbackClasses  = []string{"6", "7", "8", "9", "10"}
	fallbackSections = []string{"A", "B", "C"}
)

// Fallback generates the placeholder student dataset shown when a live fetch
// fails. It is deterministic, local-only and never written back to the
// server; mutations against it stay local until a real fetch succeeds.
func Fallback() []Student {
	students := make([]Student, 0, FallbackCount)
	base := time.Date(2023, time.April, 3, 0, 0, 0, 0, time.UTC)

	for i := 0; i < FallbackCount; i++ {
		first := fallbackFirstNames[i%len(fallbackFirstNames)]
		last := fallbackLastNames[i%len(fallbackLastNames)]
		gender := "male"
		if i%2 == 1 {
			gender = "female"
		}
		status := StatusActive
		if i%10 == 9 {
			status = StatusInactive
		}

		students = append(students, Student{
			ID:            fmt.Sprintf("STU%04d", i+1),
			Name:          first + " " + last,
			Class:         fallbackClasses[i%len(fallbackClasses)],
			Section:       fallbackSections[i%len(fallbackSections)],
			RollNumber:    fmt.Sprintf("%02d", i+1),
			Gender:        gender,
			FatherName:    "Mr. " + last,
			MotherName:    "Mrs. " + last,
			ContactNumber: fmt.Sprintf("98765%05d", 43210+i),
			Email:         strings.ToLower(fmt.Sprintf("%s.%s%d@student.hmps.edu", first, last, i+1)),
			Address:       fmt.Sprintf("%d Gandhi Road, Hamirpur", 100+i),
			JoiningDate:   base.AddDate(0, 0, i*7),
			Status:        status,
		})
	}
	return students
}
