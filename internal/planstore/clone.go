package planstore

import "github.com/planforge/resplan-api/internal/models"

func cloneEmployee(e models.Employee) models.Employee {
	out := e
	out.Skills = append([]string(nil), e.Skills...)
	return out
}

func cloneEmployees(in []models.Employee) []models.Employee {
	if in == nil {
		return nil
	}
	out := make([]models.Employee, len(in))
	for i, e := range in {
		out[i] = cloneEmployee(e)
	}
	return out
}

func cloneEntries(in []models.ForecastEntry) []models.ForecastEntry {
	if in == nil {
		return nil
	}
	out := make([]models.ForecastEntry, len(in))
	for i, e := range in {
		out[i] = e
		if e.Volume != nil {
			v := *e.Volume
			out[i].Volume = &v
		}
	}
	return out
}

func cloneProject(p models.Project) models.Project {
	out := p
	if p.Volume != nil {
		v := *p.Volume
		out.Volume = &v
	}
	out.Milestones = append([]models.Milestone(nil), p.Milestones...)
	return out
}

func cloneProjects(in []models.Project) []models.Project {
	if in == nil {
		return nil
	}
	out := make([]models.Project, len(in))
	for i, p := range in {
		out[i] = cloneProject(p)
	}
	return out
}

func cloneQuarter(q models.QuarterData) models.QuarterData {
	out := q
	out.Months = append([]string(nil), q.Months...)
	out.MonthlyCapacityDays = append([]float64(nil), q.MonthlyCapacityDays...)
	out.RunningProjects = cloneEntries(q.RunningProjects)
	out.MustWin = cloneEntries(q.MustWin)
	out.Alternative = cloneEntries(q.Alternative)
	return out
}

func cloneQuarters(in []models.QuarterData) []models.QuarterData {
	if in == nil {
		return nil
	}
	out := make([]models.QuarterData, len(in))
	for i, q := range in {
		out[i] = cloneQuarter(q)
	}
	return out
}

func cloneVersion(v models.PlanVersion) models.PlanVersion {
	out := v
	out.Assignments = append([]models.Assignment(nil), v.Assignments...)
	out.Absences = append([]models.Absence(nil), v.Absences...)
	out.Quarters = cloneQuarters(v.Quarters)
	return out
}

func cloneState(state models.PlanState) models.PlanState {
	out := state
	out.Employees = cloneEmployees(state.Employees)
	out.Projects = cloneProjects(state.Projects)
	out.Holidays = append([]models.PublicHoliday(nil), state.Holidays...)
	if state.Versions != nil {
		out.Versions = make([]models.PlanVersion, len(state.Versions))
		for i, v := range state.Versions {
			out.Versions[i] = cloneVersion(v)
		}
	}
	return out
}
